package synth

import "farefinder/internal/core"

// airports is the fixed roster used for suggestion fallback and for picking
// synthetic stopovers and destinations.
var airports = []core.AirportSuggestion{
	{Code: "JFK", City: "New York", Name: "John F. Kennedy International", Country: "United States"},
	{Code: "EWR", City: "Newark", Name: "Newark Liberty International", Country: "United States"},
	{Code: "LAX", City: "Los Angeles", Name: "Los Angeles International", Country: "United States"},
	{Code: "SFO", City: "San Francisco", Name: "San Francisco International", Country: "United States"},
	{Code: "ORD", City: "Chicago", Name: "O'Hare International", Country: "United States"},
	{Code: "ATL", City: "Atlanta", Name: "Hartsfield-Jackson International", Country: "United States"},
	{Code: "MIA", City: "Miami", Name: "Miami International", Country: "United States"},
	{Code: "YYZ", City: "Toronto", Name: "Toronto Pearson International", Country: "Canada"},
	{Code: "LHR", City: "London", Name: "Heathrow", Country: "United Kingdom"},
	{Code: "LGW", City: "London", Name: "Gatwick", Country: "United Kingdom"},
	{Code: "CDG", City: "Paris", Name: "Charles de Gaulle", Country: "France"},
	{Code: "FRA", City: "Frankfurt", Name: "Frankfurt am Main", Country: "Germany"},
	{Code: "MUC", City: "Munich", Name: "Franz Josef Strauss", Country: "Germany"},
	{Code: "AMS", City: "Amsterdam", Name: "Schiphol", Country: "Netherlands"},
	{Code: "MAD", City: "Madrid", Name: "Adolfo Suárez Madrid-Barajas", Country: "Spain"},
	{Code: "BCN", City: "Barcelona", Name: "Josep Tarradellas Barcelona-El Prat", Country: "Spain"},
	{Code: "FCO", City: "Rome", Name: "Leonardo da Vinci-Fiumicino", Country: "Italy"},
	{Code: "ZRH", City: "Zurich", Name: "Zurich Airport", Country: "Switzerland"},
	{Code: "VIE", City: "Vienna", Name: "Vienna International", Country: "Austria"},
	{Code: "IST", City: "Istanbul", Name: "Istanbul Airport", Country: "Turkey"},
	{Code: "DXB", City: "Dubai", Name: "Dubai International", Country: "United Arab Emirates"},
	{Code: "SIN", City: "Singapore", Name: "Changi", Country: "Singapore"},
	{Code: "HND", City: "Tokyo", Name: "Haneda", Country: "Japan"},
	{Code: "SYD", City: "Sydney", Name: "Kingsford Smith", Country: "Australia"},
	{Code: "GRU", City: "São Paulo", Name: "Guarulhos International", Country: "Brazil"},
	{Code: "DEL", City: "New Delhi", Name: "Indira Gandhi International", Country: "India"},
}

type airline struct {
	code string
	name string
}

var airlines = []airline{
	{"AA", "American Airlines"},
	{"DL", "Delta Air Lines"},
	{"UA", "United Airlines"},
	{"BA", "British Airways"},
	{"LH", "Lufthansa"},
	{"AF", "Air France"},
	{"KL", "KLM Royal Dutch Airlines"},
	{"IB", "Iberia"},
	{"LX", "SWISS"},
	{"TK", "Turkish Airlines"},
	{"EK", "Emirates"},
	{"QF", "Qantas"},
}

var aircraftTypes = []string{
	"Airbus A320",
	"Airbus A321neo",
	"Airbus A350-900",
	"Boeing 737-800",
	"Boeing 787-9",
	"Boeing 777-300ER",
	"Embraer E190",
}
