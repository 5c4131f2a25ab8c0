package provider

import "github.com/skylinedata/transnet/internal/schema"

// Collection names used by the shipped contracts.
const (
	AirportCollection = "airports"
	FlightCollection  = "flights"
)

// DiioAirport describes the Diio Mi Express "Airport" report: a TSV
// with a title row, the header two rows later, data two rows after
// that, running to EOF.
func DiioAirport() *Contract {
	return &Contract{
		Name:        "DiioAirport",
		Kind:        KindAirport,
		Collection:  AirportCollection,
		TitlePos:    0,
		HeaderPos:   2,
		DataPos:     4,
		BlankRunEOD: 0,
		Dialect:     TabDialect,
		Extensions:  []string{".tsv"},
		fieldMap: map[string]string{
			"code":          "code",
			"name":          "name",
			"city":          "city",
			"state":         "state",
			"state name":    "stateName",
			"latitude":      "latitude",
			"longitude":     "longitude",
			"country":       "country",
			"country name":  "countryName",
			"global region": "globalRegion",
			"wac":           "WAC",
			"notes":         "notes",
		},
	}
}

// FlightGlobal describes the FlightGlobal scheduled passenger and
// cargo CSV deliverable. The report is the basis for the flight record
// kind, so the mapping is 1:1 with the canonical names.
func FlightGlobal() *Contract {
	return &Contract{
		Name:        "FlightGlobal",
		Kind:        KindFlight,
		Collection:  FlightCollection,
		TitlePos:    -1,
		HeaderPos:   0,
		DataPos:     1,
		BlankRunEOD: 0,
		Dialect:     CommaDialect,
		Extensions:  []string{".csv"},
		fieldMap:    flightGlobalMap,
	}
}

// DiioExtract describes the Diio Mi Express weekly schedule "Extract"
// report: a TSV flight listing where two consecutive blank rows mark
// the end of data ahead of the report-parameter footer.
func DiioExtract() *Contract {
	return &Contract{
		Name:        "DiioExtract",
		Kind:        KindFlight,
		Collection:  FlightCollection,
		TitlePos:    0,
		HeaderPos:   2,
		DataPos:     4,
		BlankRunEOD: 2,
		Dialect:     TabDialect,
		Extensions:  []string{".tsv"},
		fieldMap: map[string]string{
			"date":       "effectiveDate",
			"mktg al":    "carrier",
			"alliance":   "alliance",
			"op al":      "operatingCarrier",
			"orig":       "departureAirport",
			"dest":       "arrivalAirport",
			"miles":      "miles",
			"flight":     "flightNumber",
			"stops":      "stops",
			"equip":      "equipment",
			"seats":      "totalSeats",
			"dep term":   "departureTerminal",
			"arr term":   "arrivalTerminal",
			"dep time":   "depTime",
			"arr time":   "arrTime",
			"block mins": "blockMins",
			"arr flag":   "arrivalFlag",
			"orig wac":   "origWAC",
			"dest wac":   "destWAC",
			"op days":    "daysOfOperation",
			"ops/week":   "opsPerWeek",
			"seats/week": "seatsPerWeek",
		},
		SchemaOverrides: map[string]schema.FieldSpec{
			// Diio renders dates as "Jun 2015".
			"effectiveDate": {Type: schema.TypeDateTime, Required: true, DateFormat: "Jan 2006"},
		},
	}
}

var flightGlobalMap = map[string]string{
	"carrier":                   "carrier",
	"flightnumber":              "flightNumber",
	"servicetype":               "serviceType",
	"effectivedate":             "effectiveDate",
	"discontinueddate":          "discontinuedDate",
	"day1":                      "day1",
	"day2":                      "day2",
	"day3":                      "day3",
	"day4":                      "day4",
	"day5":                      "day5",
	"day6":                      "day6",
	"day7":                      "day7",
	"departureairport":          "departureAirport",
	"departurecity":             "departureCity",
	"departurestate":            "departureState",
	"departurecountry":          "departureCountry",
	"departuretimepub":          "departureTimePub",
	"departuretimeactual":       "departureTimeActual",
	"departureutcvariance":      "departureUTCVariance",
	"departureterminal":         "departureTerminal",
	"arrivalairport":            "arrivalAirport",
	"arrivalcity":               "arrivalCity",
	"arrivalstate":              "arrivalState",
	"arrivalcountry":            "arrivalCountry",
	"arrivaltimepub":            "arrivalTimePub",
	"arrivaltimeactual":         "arrivalTimeActual",
	"arrivalutcvariance":        "arrivalUTCVariance",
	"arrivalterminal":           "arrivalTerminal",
	"subaircraftcode":           "subAircraftCode",
	"groupaircraftcode":         "groupAircraftCode",
	"classes":                   "classes",
	"classesfull":               "classesFull",
	"trafficrestriction":        "trafficRestriction",
	"flightarrivaldayindicator": "flightArrivalDayIndicator",
	"stops":                     "stops",
	"stopcodes":                 "stopCodes",
	"stoprestrictions":          "stopRestrictions",
	"stopsubaircraftcodes":      "stopsubAircraftCodes",
	"aircraftchangeindicator":   "aircraftChangeIndicator",
	"meals":                     "meals",
	"flightdistance":            "flightDistance",
	"elapsedtime":               "elapsedTime",
	"layovertime":               "layoverTime",
	"inflightservice":           "inFlightService",
	"ssimcodesharestatus":       "SSIMcodeShareStatus",
	"ssimcodesharecarrier":      "SSIMcodeShareCarrier",
	"codeshareindicator":        "codeshareIndicator",
	"wetleaseindicator":         "wetleaseIndicator",
	"codeshareinfo":             "codeshareInfo",
	"wetleaseinfo":              "wetleaseInfo",
	"operationalsuffix":         "operationalSuffix",
	"ivi":                       "ivi",
	"leg":                       "leg",
	"recordid":                  "recordId",
	"daysofoperation":           "daysOfOperation",
	"totalfrequency":            "totalFrequency",
	"availseatmi":               "availSeatMi",
	"availseatkm":               "availSeatKm",
	"intstoparrivaltime":        "intStopArrivaltime",
	"intstopdeparturetime":      "intStopDepartureTime",
	"intstopnextday":            "intStopNextDay",
	"physicallegkey":            "physicalLegKey",
	"departureairportname":      "departureAirportName",
	"departurecityname":         "departureCityName",
	"departurecountryname":      "departureCountryName",
	"arrivalairportname":        "arrivalAirportName",
	"arrivalcityname":           "arrivalCityName",
	"arrivalcountryname":        "arrivalCountryName",
	"aircrafttype":              "aircraftType",
	"carriername":               "carrierName",
	"totalseats":                "totalSeats",
	"firstclassseats":           "firstClassSeats",
	"businessclassseats":        "businessClassSeats",
	"premiumeconomyclassseats":  "premiumEconomyClassSeats",
	"economyclassseats":         "economyClassSeats",
	"aircrafttonnage":           "aircraftTonnage",
}
