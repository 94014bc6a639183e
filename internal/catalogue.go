package internal

import (
	"slices"
	"strings"
)

// Currency is a catalogue entry used for display.
type Currency struct {
	Code CurrencyCode `json:"code"`
	Name string       `json:"name"`
}

var currencyNames = map[CurrencyCode]string{
	"USD": "US Dollar",
	"EUR": "Euro",
	"GBP": "British Pound Sterling",
	"JPY": "Japanese Yen",
	"AUD": "Australian Dollar",
	"CAD": "Canadian Dollar",
	"CHF": "Swiss Franc",
	"CNY": "Chinese Yuan",
	"SEK": "Swedish Krona",
	"NZD": "New Zealand Dollar",
	"MXN": "Mexican Peso",
	"SGD": "Singapore Dollar",
	"HKD": "Hong Kong Dollar",
	"NOK": "Norwegian Krone",
	"KRW": "South Korean Won",
	"TRY": "Turkish Lira",
	"RUB": "Russian Ruble",
	"INR": "Indian Rupee",
	"BRL": "Brazilian Real",
	"ZAR": "South African Rand",
	"PLN": "Polish Zloty",
	"ILS": "Israeli Shekel",
	"DKK": "Danish Krone",
	"CZK": "Czech Koruna",
	"HUF": "Hungarian Forint",
	"RON": "Romanian Leu",
	"BGN": "Bulgarian Lev",
	"HRK": "Croatian Kuna",
	"ISK": "Icelandic Krona",
	"PHP": "Philippine Peso",
	"THB": "Thai Baht",
	"MYR": "Malaysian Ringgit",
	"IDR": "Indonesian Rupiah",
	"VND": "Vietnamese Dong",
	"AED": "UAE Dirham",
	"SAR": "Saudi Riyal",
	"QAR": "Qatari Riyal",
	"KWD": "Kuwaiti Dinar",
	"BHD": "Bahraini Dinar",
	"OMR": "Omani Rial",
	"JOD": "Jordanian Dinar",
	"LBP": "Lebanese Pound",
	"EGP": "Egyptian Pound",
	"MAD": "Moroccan Dirham",
	"TND": "Tunisian Dinar",
	"DZD": "Algerian Dinar",
	"LYD": "Libyan Dinar",
	"SDG": "Sudanese Pound",
	"ETB": "Ethiopian Birr",
	"KES": "Kenyan Shilling",
	"UGX": "Ugandan Shilling",
	"TZS": "Tanzanian Shilling",
	"RWF": "Rwandan Franc",
	"NGN": "Nigerian Naira",
	"GHS": "Ghanaian Cedi",
	"XOF": "West African CFA Franc",
	"XAF": "Central African CFA Franc",
	"AOA": "Angolan Kwanza",
	"MZN": "Mozambican Metical",
	"BWP": "Botswanan Pula",
	"SZL": "Swazi Lilangeni",
	"LSL": "Lesotho Loti",
	"NAD": "Namibian Dollar",
	"ZMW": "Zambian Kwacha",
	"ZWL": "Zimbabwean Dollar",
	"MWK": "Malawian Kwacha",
	"MGA": "Malagasy Ariary",
	"MUR": "Mauritian Rupee",
	"SCR": "Seychellois Rupee",
	"KMF": "Comorian Franc",
	"DJF": "Djiboutian Franc",
	"SOS": "Somali Shilling",
	"ERN": "Eritrean Nakfa",
	"CLP": "Chilean Peso",
	"ARS": "Argentine Peso",
	"UYU": "Uruguayan Peso",
	"PYG": "Paraguayan Guarani",
	"BOB": "Bolivian Boliviano",
	"PEN": "Peruvian Sol",
	"COP": "Colombian Peso",
	"VES": "Venezuelan Bolívar",
	"GYD": "Guyanese Dollar",
	"SRD": "Surinamese Dollar",
	"GTQ": "Guatemalan Quetzal",
	"BZD": "Belize Dollar",
	"SVC": "Salvadoran Colón",
	"HNL": "Honduran Lempira",
	"NIO": "Nicaraguan Córdoba",
	"CRC": "Costa Rican Colón",
	"PAB": "Panamanian Balboa",
	"CUP": "Cuban Peso",
	"DOP": "Dominican Peso",
	"HTG": "Haitian Gourde",
	"JMD": "Jamaican Dollar",
	"BBD": "Barbadian Dollar",
	"TTD": "Trinidad and Tobago Dollar",
	"XCD": "East Caribbean Dollar",
	"AWG": "Aruban Florin",
	"ANG": "Netherlands Antillean Guilder",
	"BMD": "Bermudian Dollar",
	"KYD": "Cayman Islands Dollar",
	"BSD": "Bahamian Dollar",
	"FJD": "Fijian Dollar",
	"PGK": "Papua New Guinean Kina",
	"SBD": "Solomon Islands Dollar",
	"VUV": "Vanuatu Vatu",
	"TOP": "Tongan Paʻanga",
	"WST": "Samoan Tala",
	"PKR": "Pakistani Rupee",
	"BDT": "Bangladeshi Taka",
	"LKR": "Sri Lankan Rupee",
	"NPR": "Nepalese Rupee",
	"BTN": "Bhutanese Ngultrum",
	"MVR": "Maldivian Rufiyaa",
	"AFN": "Afghan Afghani",
	"IRR": "Iranian Rial",
	"IQD": "Iraqi Dinar",
	"SYP": "Syrian Pound",
	"YER": "Yemeni Rial",
	"UZS": "Uzbekistani Som",
	"KZT": "Kazakhstani Tenge",
	"KGS": "Kyrgyzstani Som",
	"TJS": "Tajikistani Somoni",
	"TMT": "Turkmenistani Manat",
	"AZN": "Azerbaijani Manat",
	"GEL": "Georgian Lari",
	"AMD": "Armenian Dram",
	"BYN": "Belarusian Ruble",
	"UAH": "Ukrainian Hryvnia",
	"MDL": "Moldovan Leu",
	"MNT": "Mongolian Tugrik",
	"KPW": "North Korean Won",
	"LAK": "Lao Kip",
	"KHR": "Cambodian Riel",
	"MMK": "Myanmar Kyat",
	"BND": "Brunei Dollar",
	"TWD": "Taiwan Dollar",
}

// CurrencyName returns the display name of code, or the code itself when the
// catalogue does not know it.
func CurrencyName(code CurrencyCode) string {
	if n, ok := currencyNames[code]; ok {
		return n
	}
	return string(code)
}

// Currencies lists the catalogue sorted by code.
func Currencies() []Currency {
	out := make([]Currency, 0, len(currencyNames))
	for code, name := range currencyNames {
		out = append(out, Currency{Code: code, Name: name})
	}
	slices.SortFunc(out, func(a, b Currency) int { return strings.Compare(string(a.Code), string(b.Code)) })
	return out
}

// Label is the "USD - US Dollar" form used in selectors.
func (c Currency) Label() string { return string(c.Code) + " - " + c.Name }
