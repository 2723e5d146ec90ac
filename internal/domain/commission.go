package domain

// Commission report structures returned by POST /v1/reports/commissions.
// Field names match the payload the dashboard frontend renders.

// CommissionReportRequest is the inbound request body.
type CommissionReportRequest struct {
	StartDate    string `json:"startDate"`
	EndDate      string `json:"endDate"`
	ForceRefresh bool   `json:"forceRefresh"`
}

// CommissionReport is the full nested report.
type CommissionReport struct {
	Branches        []BranchCommission `json:"branches"`
	TotalCommission float64            `json:"totalCommission"`
	TotalNewClients int                `json:"totalNewClients"`
	FetchedAt       string             `json:"fetchedAt"`
}

// BranchCommission is one branch's share of the report. Branches with
// no eligible appointments are omitted entirely.
type BranchCommission struct {
	BranchID    string              `json:"branchId"`
	BranchName  string              `json:"branchName"`
	Stylists    []StylistCommission `json:"stylists"`
	BranchTotal float64             `json:"branchTotal"`
}

// StylistCommission groups a stylist's qualifying clients.
type StylistCommission struct {
	StaffID      string             `json:"staffId"`
	StaffName    string             `json:"staffName"`
	Clients      []ClientCommission `json:"clients"`
	StylistTotal float64            `json:"stylistTotal"`
}

// ClientCommission is one new client's first-visit services.
type ClientCommission struct {
	ClientID       string              `json:"clientId"`
	ClientName     string              `json:"clientName"`
	FirstVisitDate string              `json:"firstVisitDate"`
	Services       []ServiceCommission `json:"services"`
	ClientTotal    float64             `json:"clientTotal"`
}

// ServiceCommission is one commission line item.
type ServiceCommission struct {
	AppointmentID   string  `json:"appointmentId"`
	ServiceName     string  `json:"serviceName"`
	AppointmentDate string  `json:"appointmentDate"`
	Price           float64 `json:"price"`
	Commission      float64 `json:"commission"`
}
