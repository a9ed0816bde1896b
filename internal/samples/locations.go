package samples

// locations maps a state to districts used for generated owners.
var locations = map[string][]string{
	"Andhra Pradesh": {"Guntur", "Krishna", "Kurnool", "Chittoor"},
	"Bihar":          {"Patna", "Gaya", "Muzaffarpur", "Bhagalpur"},
	"Gujarat":        {"Anand", "Banaskantha", "Junagadh", "Kutch", "Mehsana"},
	"Haryana":        {"Karnal", "Hisar", "Rohtak", "Jind"},
	"Karnataka":      {"Mysuru", "Belagavi", "Hassan", "Tumakuru"},
	"Madhya Pradesh": {"Indore", "Sagar", "Ujjain", "Jabalpur"},
	"Maharashtra":    {"Pune", "Kolhapur", "Nashik", "Ahmednagar", "Satara"},
	"Punjab":         {"Ludhiana", "Bathinda", "Patiala", "Sangrur"},
	"Rajasthan":      {"Bikaner", "Nagaur", "Jodhpur", "Barmer", "Sikar"},
	"Tamil Nadu":     {"Erode", "Salem", "Namakkal", "Thanjavur"},
	"Telangana":      {"Nalgonda", "Warangal", "Karimnagar"},
	"Uttar Pradesh":  {"Mathura", "Etawah", "Bareilly", "Meerut", "Varanasi"},
	"West Bengal":    {"Nadia", "Murshidabad", "Bardhaman", "Hooghly"},
}

var (
	firstNames = []string{"Rajesh", "Priya", "Amit", "Sunita", "Vikram", "Anjali", "Sanjay", "Meena", "Arun", "Pooja", "Deepak", "Lalita", "Kiran", "Suresh", "Kavita", "Ravi", "Geeta"}
	lastNames  = []string{"Kumar", "Sharma", "Singh", "Patel", "Gupta", "Verma", "Reddy", "Yadav", "Chauhan", "Mehta", "Joshi", "Mishra"}
	villages   = []string{"Ramgarh", "Devipur", "Sitapur", "Madhavpur", "Krishnanagar", "Gopalganj", "Lakshmipur", "Durgapur", "Shantipur", "Alipur"}

	identifyErrors = []string{"Image too blurry for analysis.", "Animal is obstructed.", "Multiple animals detected in photo."}
)
