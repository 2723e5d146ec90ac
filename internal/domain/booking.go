package domain

// Entities fetched from the Phorest booking API. Dates arrive as ISO
// strings; day-level comparisons use the calendar-day prefix, so they
// are kept as strings rather than parsed into time.Time.

// Branch is a physical business location in the booking system.
type Branch struct {
	BranchID string `json:"branchId"`
	Name     string `json:"name"`
}

// Staff is a stylist employed at a branch.
type Staff struct {
	StaffID   string `json:"staffId"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	BranchID  string `json:"branchId"`
}

// Client is a salon customer. FirstVisit is empty when the booking
// system has no recorded visit.
type Client struct {
	ClientID   string `json:"clientId"`
	FirstName  string `json:"firstName"`
	LastName   string `json:"lastName"`
	FirstVisit string `json:"firstVisit"`
	Deleted    bool   `json:"deleted"`
}

// Appointment is one booked service. Price is nil when the booking
// system has no price on record.
type Appointment struct {
	AppointmentID   string   `json:"appointmentId"`
	ClientID        string   `json:"clientId"`
	StaffID         string   `json:"staffId"`
	ServiceName     string   `json:"serviceName"`
	AppointmentDate string   `json:"appointmentDate"`
	Price           *float64 `json:"price"`
	ActivationState string   `json:"activationState"`
	Deleted         bool     `json:"deleted"`
}

// BranchData bundles one branch with its staff and the appointments
// fetched for the requested window.
type BranchData struct {
	Branch       Branch
	Staff        []Staff
	Appointments []Appointment
}

// PageMetadata is the paging envelope the booking API embeds in every
// list response.
type PageMetadata struct {
	Size          int `json:"size"`
	TotalElements int `json:"totalElements"`
	TotalPages    int `json:"totalPages"`
	Number        int `json:"number"`
}

// DateRange is one from/to chunk of an appointment query, both ends
// inclusive, formatted as 2006-01-02.
type DateRange struct {
	From string
	To   string
}
