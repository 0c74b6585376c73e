package models

// Address holds the structured address returned by a reverse geocoding
// provider. Any field may be empty; providers populate whichever parts
// the underlying service knows about.
type Address struct {
	City     string `json:"city"`
	Town     string `json:"town"`
	Village  string `json:"village"`
	Hamlet   string `json:"hamlet"`
	Suburb   string `json:"suburb"`
	Road     string `json:"road"`
	State    string `json:"state"`
	Province string `json:"province"`
	Region   string `json:"region"`
	Postcode string `json:"postcode"`
	Country  string `json:"country"`
}

// Empty reports whether no address field is populated at all.
func (a Address) Empty() bool {
	return a == Address{}
}
