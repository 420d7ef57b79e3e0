package extract

const samplePage = `Tax Invoice/Bill of Supply/Cash Memo
(Original for Recipient)
Sold By :
Organic Farms Pvt Ltd
Order Number: 404-1234567-7654321
Invoice Number : IN-KA-2025-0042
Order Date: 02.11.2025
Invoice Date : 02.11.2025
Place of supply: KARNATAKA
Place of Delivery: TAMIL NADU
Shipping Address :
Ravi Kumar
12 Lake View Road
Chennai, TAMIL NADU, 600042
IN
Invoice Details : KA-1234
Sl.
No
Description
Unit
Price
Qty
Net
Amount
Tax
Rate
Tax
Type
Tax
Amount
Total
Amount
1
Cashew Nuts, 1kg | Premium W320 Whole Cashews | B0FW7291VR ( MS-H2GY-GWJX )
HSN:08013220
₹1,314.29
1
₹1,314.29
5%
IGST
₹65.71
₹1,380.00
TOTAL:
₹65.71
₹1,380.00
Amount in Words:
One Thousand Three Hundred Eighty only
Payment Transaction ID: 4TrX9KQ2pLm
Date & Time: 02/11/2025, 12:58:05 hrs
Invoice Value: 1,380.00
Mode of Payment: NetBanking
`
