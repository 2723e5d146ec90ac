package service

import (
	"math"
	"strings"
	"time"

	"github.com/hewittco/portfolio-dashboard-go/internal/domain"
)

// commissionRate is the flat 20% paid on every eligible first-visit
// service.
const commissionRate = 0.20

// round2 rounds to two decimal places, half away from zero.
func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// dayOf truncates an ISO timestamp to its calendar day.
func dayOf(ts string) string {
	if len(ts) >= 10 {
		return ts[:10]
	}
	return ts
}

func displayName(first, last string) string {
	return strings.TrimSpace(first + " " + last)
}

// CalculateCommissions is a pure transformation from fetched booking
// data to the nested commission report.
//
// A client is "new" when their first visit falls inside [startDate,
// endDate] and they are not deleted. An appointment earns commission
// only when it belongs to a new client, is not canceled or deleted,
// has a positive price, and happened on the client's exact first-visit
// day — later visits by the same new client never count.
//
// Totals are rounded at every aggregation level: each client total is
// the rounded sum of its line items, each stylist total the rounded
// sum of client totals, and so on up to the report. Existing reports
// were produced this way, so the compounding rounding is kept
// compatible rather than summing once at the end.
func CalculateCommissions(branchData []domain.BranchData, clients []domain.Client, startDate, endDate string) *domain.CommissionReport {
	clientByID := make(map[string]domain.Client, len(clients))
	for _, cl := range clients {
		clientByID[cl.ClientID] = cl
	}

	// Clients whose first visit falls in range. Calendar-day strings
	// compare lexicographically.
	newClientIDs := make(map[string]bool)
	for _, cl := range clients {
		day := dayOf(cl.FirstVisit)
		if day != "" && day >= startDate && day <= endDate && !cl.Deleted {
			newClientIDs[cl.ClientID] = true
		}
	}

	var branches []domain.BranchCommission
	var totalCommission float64
	servedClientIDs := make(map[string]bool)

	for _, bd := range branchData {
		staffNames := make(map[string]string, len(bd.Staff))
		for _, s := range bd.Staff {
			staffNames[s.StaffID] = displayName(s.FirstName, s.LastName)
		}

		var eligible []domain.Appointment
		for _, appt := range bd.Appointments {
			if !newClientIDs[appt.ClientID] ||
				appt.ActivationState == "CANCELED" ||
				appt.Deleted ||
				appt.Price == nil || *appt.Price <= 0 {
				continue
			}
			cl, ok := clientByID[appt.ClientID]
			if !ok {
				continue
			}
			if dayOf(appt.AppointmentDate) != dayOf(cl.FirstVisit) {
				continue
			}
			eligible = append(eligible, appt)
		}

		if len(eligible) == 0 {
			continue
		}

		// Group by stylist, preserving first-seen order.
		var staffOrder []string
		staffGroups := make(map[string][]domain.Appointment)
		for _, appt := range eligible {
			if _, ok := staffGroups[appt.StaffID]; !ok {
				staffOrder = append(staffOrder, appt.StaffID)
			}
			staffGroups[appt.StaffID] = append(staffGroups[appt.StaffID], appt)
		}

		var stylists []domain.StylistCommission
		var branchTotal float64

		for _, staffID := range staffOrder {
			appts := staffGroups[staffID]

			var clientOrder []string
			clientGroups := make(map[string][]domain.Appointment)
			for _, appt := range appts {
				if _, ok := clientGroups[appt.ClientID]; !ok {
					clientOrder = append(clientOrder, appt.ClientID)
				}
				clientGroups[appt.ClientID] = append(clientGroups[appt.ClientID], appt)
			}

			var clientCommissions []domain.ClientCommission
			var stylistTotal float64

			for _, clientID := range clientOrder {
				cl, ok := clientByID[clientID]
				if !ok {
					continue
				}

				servedClientIDs[clientID] = true

				var services []domain.ServiceCommission
				var clientTotal float64
				for _, appt := range clientGroups[clientID] {
					serviceName := appt.ServiceName
					if serviceName == "" {
						serviceName = "Service"
					}
					commission := round2(*appt.Price * commissionRate)
					services = append(services, domain.ServiceCommission{
						AppointmentID:   appt.AppointmentID,
						ServiceName:     serviceName,
						AppointmentDate: appt.AppointmentDate,
						Price:           *appt.Price,
						Commission:      commission,
					})
					clientTotal += commission
				}
				clientTotal = round2(clientTotal)

				clientCommissions = append(clientCommissions, domain.ClientCommission{
					ClientID:       clientID,
					ClientName:     displayName(cl.FirstName, cl.LastName),
					FirstVisitDate: cl.FirstVisit,
					Services:       services,
					ClientTotal:    clientTotal,
				})

				stylistTotal += clientTotal
			}

			stylistTotal = round2(stylistTotal)

			staffName := staffNames[staffID]
			if staffName == "" {
				staffName = "Unknown Stylist"
			}
			stylists = append(stylists, domain.StylistCommission{
				StaffID:      staffID,
				StaffName:    staffName,
				Clients:      clientCommissions,
				StylistTotal: stylistTotal,
			})

			branchTotal += stylistTotal
		}

		branchTotal = round2(branchTotal)
		totalCommission += branchTotal

		branches = append(branches, domain.BranchCommission{
			BranchID:    bd.Branch.BranchID,
			BranchName:  bd.Branch.Name,
			Stylists:    stylists,
			BranchTotal: branchTotal,
		})
	}

	return &domain.CommissionReport{
		Branches:        branches,
		TotalCommission: round2(totalCommission),
		TotalNewClients: len(servedClientIDs),
		FetchedAt:       time.Now().UTC().Format(time.RFC3339),
	}
}
