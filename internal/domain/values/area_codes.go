package values

// Region groups the area codes assigned to one state, district, territory or province
type Region struct {
	Name  string
	Codes []string
}

// NANPRegions is the static area-code table. Order is significant for StateForAreaCode.
var NANPRegions = []Region{
	{"Alabama", []string{"205", "251", "256", "334", "483", "659", "938"}},
	{"Alaska", []string{"907"}},
	{"Arizona", []string{"480", "520", "602", "623", "928"}},
	{"Arkansas", []string{"327", "479", "501", "870"}},
	{"California", []string{
		"209", "213", "279", "310", "323", "341", "350", "369", "408", "415",
		"424", "442", "510", "530", "559", "562", "619", "626", "628", "650",
		"657", "661", "669", "707", "714", "738", "747", "760", "805", "818",
		"820", "831", "837", "840", "858", "909", "916", "925", "949", "951",
	}},
	{"Colorado", []string{"303", "719", "720", "748", "970", "983"}},
	{"Connecticut", []string{"203", "475", "860", "959"}},
	{"Delaware", []string{"302"}},
	{"District of Columbia", []string{"202", "771"}},
	{"Florida", []string{
		"239", "305", "321", "324", "352", "386", "407", "448", "561", "645",
		"656", "689", "727", "728", "754", "772", "786", "813", "850", "863",
		"904", "941", "954",
	}},
	{"Georgia", []string{"229", "404", "470", "478", "678", "706", "762", "770", "912", "943"}},
	{"Hawaii", []string{"808"}},
	{"Idaho", []string{"208", "986"}},
	{"Illinois", []string{
		"217", "224", "309", "312", "331", "447", "464", "618", "630", "708",
		"730", "773", "779", "815", "847", "861", "872",
	}},
	{"Indiana", []string{"219", "260", "317", "463", "574", "765", "812", "930"}},
	{"Iowa", []string{"319", "515", "563", "641", "712"}},
	{"Kansas", []string{"316", "620", "785", "913"}},
	{"Kentucky", []string{"270", "364", "502", "606", "859"}},
	{"Louisiana", []string{"225", "318", "337", "504", "985"}},
	{"Maine", []string{"207"}},
	{"Maryland", []string{"227", "240", "301", "410", "443", "667"}},
	{"Massachusetts", []string{"339", "351", "413", "508", "617", "774", "781", "857", "978"}},
	{"Michigan", []string{
		"231", "248", "269", "313", "517", "586", "616", "679", "734", "810",
		"906", "947", "989",
	}},
	{"Minnesota", []string{"218", "320", "507", "612", "651", "763", "924", "952"}},
	{"Mississippi", []string{"228", "601", "662", "769"}},
	{"Missouri", []string{"235", "314", "417", "557", "573", "636", "660", "816", "975"}},
	{"Montana", []string{"406"}},
	{"Nebraska", []string{"308", "402", "531"}},
	{"Nevada", []string{"702", "725", "775"}},
	{"New Hampshire", []string{"603"}},
	{"New Jersey", []string{"201", "551", "609", "640", "732", "848", "856", "862", "908", "973"}},
	{"New Mexico", []string{"505", "575"}},
	{"New York", []string{
		"212", "315", "329", "332", "347", "363", "516", "518", "585", "607",
		"624", "631", "646", "680", "716", "718", "838", "845", "914", "917",
		"929", "934",
	}},
	{"North Carolina", []string{"252", "336", "472", "704", "743", "828", "910", "919", "980", "984"}},
	{"North Dakota", []string{"701"}},
	{"Ohio", []string{
		"216", "220", "234", "283", "326", "330", "380", "419", "436", "440",
		"513", "567", "614", "740", "937",
	}},
	{"Oklahoma", []string{"405", "539", "572", "580", "918"}},
	{"Oregon", []string{"458", "503", "541", "971"}},
	{"Pennsylvania", []string{
		"215", "223", "267", "272", "412", "445", "484", "570", "582", "610",
		"717", "724", "814", "835", "878",
	}},
	{"Rhode Island", []string{"401"}},
	{"South Carolina", []string{"803", "821", "839", "843", "854", "864"}},
	{"South Dakota", []string{"605"}},
	{"Tennessee", []string{"423", "615", "629", "731", "865", "901", "931"}},
	{"Texas", []string{
		"210", "214", "254", "281", "325", "346", "361", "409", "430", "432",
		"469", "512", "682", "713", "726", "737", "806", "817", "830", "832",
		"903", "915", "936", "940", "945", "956", "972", "979",
	}},
	{"Utah", []string{"385", "435", "801"}},
	{"Vermont", []string{"802"}},
	{"Virginia", []string{"276", "434", "540", "571", "686", "703", "757", "804", "826", "948"}},
	{"Washington", []string{"206", "253", "360", "425", "509", "564"}},
	{"West Virginia", []string{"304", "681"}},
	{"Wisconsin", []string{"262", "274", "353", "414", "534", "608", "715", "920"}},
	{"Wyoming", []string{"307"}},

	{"Puerto Rico", []string{"787", "939"}},
	{"U.S. Virgin Islands", []string{"340"}},
	{"Guam", []string{"671"}},
	{"Northern Mariana Islands", []string{"670"}},
	{"American Samoa", []string{"684"}},

	{"Alberta", []string{"368", "403", "587", "780", "825"}},
	{"British Columbia", []string{"236", "250", "257", "604", "672", "778"}},
	{"Manitoba", []string{"204", "431", "584"}},
	{"New Brunswick", []string{"428", "506"}},
	{"Newfoundland and Labrador", []string{"709", "879"}},
	{"Nova Scotia and Prince Edward Island", []string{"782", "902"}},
	{"Ontario", []string{
		"226", "249", "289", "343", "365", "382", "416", "437", "519", "548",
		"613", "647", "683", "705", "742", "753", "807", "905", "942",
	}},
	{"Quebec", []string{
		"263", "354", "367", "418", "438", "450", "468", "514", "579", "581",
		"819", "873",
	}},
	{"Saskatchewan", []string{"306", "474", "639"}},
	{"Northern Canada", []string{"867"}},
}

var areaCodeIndex = buildAreaCodeIndex(NANPRegions)

func buildAreaCodeIndex(regions []Region) map[string]string {
	index := make(map[string]string)
	for _, region := range regions {
		for _, code := range region.Codes {
			// first region wins
			if _, exists := index[code]; !exists {
				index[code] = region.Name
			}
		}
	}
	return index
}

// IsValidAreaCode reports whether the code is assigned in the table
func IsValidAreaCode(areaCode string) bool {
	_, ok := areaCodeIndex[areaCode]
	return ok
}

// StateForAreaCode maps an area code to its region name, or UnknownState
func StateForAreaCode(areaCode string) string {
	if name, ok := areaCodeIndex[areaCode]; ok {
		return name
	}
	return UnknownState
}
