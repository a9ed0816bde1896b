package breeds

var cattle = []Breed{
	{"Gir", "Cattle", "Gujarat", Dairy},
	{"Sahiwal", "Cattle", "Punjab", Dairy},
	{"Red Sindhi", "Cattle", "Sindh", Dairy},
	{"Tharparkar", "Cattle", "Rajasthan", Dual},
	{"Rathi", "Cattle", "Rajasthan", Dairy},
	{"Kankrej", "Cattle", "Gujarat", Dual},
	{"Ongole", "Cattle", "Andhra Pradesh", Dual},
	{"Hariana", "Cattle", "Haryana", Dual},
	{"Deoni", "Cattle", "Maharashtra", Dual},
	{"Krishna Valley", "Cattle", "Karnataka", Draught},
	{"Hallikar", "Cattle", "Karnataka", Draught},
	{"Amritmahal", "Cattle", "Karnataka", Draught},
	{"Khillari", "Cattle", "Maharashtra", Draught},
	{"Kangayam", "Cattle", "Tamil Nadu", Draught},
	{"Bargur", "Cattle", "Tamil Nadu", Draught},
	{"Umblachery", "Cattle", "Tamil Nadu", Draught},
	{"Pulikulam", "Cattle", "Tamil Nadu", Draught},
	{"Alambadi", "Cattle", "Tamil Nadu", Draught},
	{"Malvi", "Cattle", "Madhya Pradesh", Draught},
	{"Nimari", "Cattle", "Madhya Pradesh", Draught},
	{"Kenkatha", "Cattle", "Uttar Pradesh", Draught},
	{"Kherigarh", "Cattle", "Uttar Pradesh", Draught},
	{"Ponwar", "Cattle", "Uttar Pradesh", Draught},
	{"Gangatiri", "Cattle", "Uttar Pradesh", Dual},
	{"Nagori", "Cattle", "Rajasthan", Draught},
	{"Mewati", "Cattle", "Rajasthan", Dual},
	{"Sanchori", "Cattle", "Rajasthan", Dual},
	{"Dangi", "Cattle", "Maharashtra", Draught},
	{"Gaolao", "Cattle", "Maharashtra", Dual},
	{"Red Kandhari", "Cattle", "Maharashtra", Draught},
	{"Konkan Kapila", "Cattle", "Maharashtra", Dual},
	{"Vechur", "Cattle", "Kerala", Dairy},
	{"Kasargod", "Cattle", "Kerala", Dual},
	{"Punganur", "Cattle", "Andhra Pradesh", Dairy},
	{"Poda Thurpu", "Cattle", "Telangana", Draught},
	{"Siri", "Cattle", "Sikkim", Draught},
	{"Bachaur", "Cattle", "Bihar", Draught},
	{"Purnea", "Cattle", "Bihar", Draught},
	{"Motu", "Cattle", "Odisha", Draught},
	{"Ghumusari", "Cattle", "Odisha", Draught},
	{"Binjharpuri", "Cattle", "Odisha", Dual},
	{"Khariar", "Cattle", "Odisha", Draught},
	{"Badri", "Cattle", "Uttarakhand", Dual},
	{"Lakhimi", "Cattle", "Assam", Dual},
	{"Belahi", "Cattle", "Haryana", Dual},
	{"Ladakhi", "Cattle", "Ladakh", Dual},
	{"Himachali Pahari", "Cattle", "Himachal Pradesh", Dual},
	{"Shweta Kapila", "Cattle", "Goa", Dairy},
	{"Dagri", "Cattle", "Gujarat", Draught},
	{"Thutho", "Cattle", "Nagaland", Dual},
	{"Nari", "Cattle", "Rajasthan", Dual},
	{"Masilum", "Cattle", "Meghalaya", Dual},
}

var buffalo = []Breed{
	{"Murrah", "Buffalo", "Haryana", Dairy},
	{"Nili-Ravi", "Buffalo", "Punjab", Dairy},
	{"Jaffarabadi", "Buffalo", "Gujarat", Dairy},
	{"Surti", "Buffalo", "Gujarat", Dairy},
	{"Mehsana", "Buffalo", "Gujarat", Dairy},
	{"Banni", "Buffalo", "Gujarat", Dairy},
	{"Bhadawari", "Buffalo", "Uttar Pradesh", Dairy},
	{"Nagpuri", "Buffalo", "Maharashtra", Dual},
	{"Pandharpuri", "Buffalo", "Maharashtra", Dairy},
	{"Marathwadi", "Buffalo", "Maharashtra", Dual},
	{"Purnathadi", "Buffalo", "Maharashtra", Dairy},
	{"Toda", "Buffalo", "Tamil Nadu", Dairy},
	{"Bargur", "Buffalo", "Tamil Nadu", Dual},
	{"Chilika", "Buffalo", "Odisha", Dual},
	{"Kalahandi", "Buffalo", "Odisha", Dual},
	{"Manda", "Buffalo", "Odisha", Draught},
	{"Jerangi", "Buffalo", "Odisha", Draught},
	{"Luit", "Buffalo", "Assam", Dual},
	{"Chhattisgarhi", "Buffalo", "Chhattisgarh", Dual},
	{"Gojri", "Buffalo", "Punjab", Dairy},
	{"Dharwadi", "Buffalo", "Karnataka", Dairy},
}
