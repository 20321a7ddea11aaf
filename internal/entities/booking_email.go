package entities

type BookingEmailData struct {
	CustomerName       string
	BookingCode        string
	VehicleName        string
	Duration           string
	WithChauffeur      bool
	StartTimeFormatted string
	EndTimeFormatted   string
	TotalPrice         string
	CurrentYear        int
	Language           string
	Status             string
}
