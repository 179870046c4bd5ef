package sandbox

import (
	"time"

	"github.com/Kadu1982/cidade-saude-conexao-digital/internal/domain/registry"
)

func birth(y int, m time.Month, d int) *time.Time {
	t := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	return &t
}

func demoFacilities() []*registry.Facility {
	return []*registry.Facility{
		{ID: "ubs001", Name: "UBS Centro", Type: registry.FacilityUBS, CNES: "2077485", Phone: "(11) 3333-1000", Services: []string{"Clínica Geral", "Pediatria", "Cardiologia"}, Active: true},
		{ID: "ubs002", Name: "UBS Jardim das Flores", Type: registry.FacilityUBS, CNES: "2077493", Phone: "(11) 3333-2000", Services: []string{"Clínica Geral", "Pediatria", "Ortopedia"}, Active: true},
		{ID: "ubs003", Name: "UBS Vila Nova", Type: registry.FacilityUBS, CNES: "2077507", Phone: "(11) 3333-3000", Services: []string{"Clínica Geral", "Neurologia"}, Active: true},
		{ID: "psf001", Name: "PSF Rural", Type: registry.FacilityUBS, CNES: "2077515", Services: []string{"Clínica Geral"}, Active: true},
		{ID: "hospital001", Name: "Hospital Municipal", Type: registry.FacilityHospital, CNES: "2077523", Phone: "(11) 3333-9000", Services: []string{"Cardiologia", "Ortopedia", "Neurologia"}, Active: true},
	}
}

func demoProfessionals() []*registry.Professional {
	weekdays := func(start, end string, days ...time.Weekday) []registry.WorkHours {
		out := make([]registry.WorkHours, 0, len(days))
		for _, d := range days {
			out = append(out, registry.WorkHours{Weekday: d, Start: start, End: end})
		}
		return out
	}
	full := []time.Weekday{time.Monday, time.Tuesday, time.Wednesday, time.Thursday, time.Friday}

	return []*registry.Professional{
		{ID: "med001", Name: "Dr. João Silva", Registration: "CRM/SP 123456", HealthCardID: "234567890123456", Specialties: []string{"Clínica Geral"}, FacilityIDs: []string{"ubs001"}, WorkHours: weekdays("07:00", "16:00", full...), Active: true},
		{ID: "med002", Name: "Dra. Maria Oliveira", Registration: "CRM/SP 234567", HealthCardID: "345678901234567", Specialties: []string{"Pediatria"}, FacilityIDs: []string{"ubs001"}, WorkHours: weekdays("07:00", "16:00", full...), Active: true},
		{ID: "med004", Name: "Dra. Ana Lima", Registration: "CRM/SP 456789", HealthCardID: "567890123456789", Specialties: []string{"Cardiologia"}, FacilityIDs: []string{"ubs001", "hospital001"}, WorkHours: weekdays("07:00", "12:00", time.Tuesday, time.Thursday), Active: true},
		{ID: "med006", Name: "Dr. Roberto Mendes", Registration: "CRM/SP 678901", HealthCardID: "789012345678901", Specialties: []string{"Clínica Geral"}, FacilityIDs: []string{"ubs002"}, WorkHours: weekdays("07:00", "16:00", full...), Active: true},
		{ID: "med008", Name: "Dr. Marcos Almeida", Registration: "CRM/SP 890123", HealthCardID: "901234567890123", Specialties: []string{"Ortopedia"}, FacilityIDs: []string{"ubs002", "hospital001"}, WorkHours: weekdays("13:00", "19:00", time.Monday, time.Wednesday, time.Friday), Active: true},
		{ID: "med014", Name: "Dr. Rafael Moreira", Registration: "CRM/SP 456780", HealthCardID: "567890123456781", Specialties: []string{"Neurologia"}, FacilityIDs: []string{"ubs003"}, WorkHours: weekdays("07:00", "12:00", time.Tuesday, time.Thursday), Active: true},
	}
}

func demoPatients() []*registry.Patient {
	return []*registry.Patient{
		{ID: "pac001", Name: "José da Silva", NationalID: "123.456.789-01", HealthCardID: "123456789012345", BirthDate: birth(1975, time.March, 15), Sex: "M", Phone: "(11) 98765-4321", Address: "Rua das Palmeiras, 123 - Centro", MotherName: "Maria da Silva", MotherNationalID: "111.222.333-44", Priority: registry.PriorityNormal},
		{ID: "pac002", Name: "Maria Santos", NationalID: "234.567.890-12", HealthCardID: "234567890123456", BirthDate: birth(1982, time.July, 22), Sex: "F", Phone: "(11) 98765-4322", Address: "Av. Central, 456 - Centro", MotherName: "Ana Santos", MotherNationalID: "222.333.444-55", Priority: registry.PriorityNormal},
		{ID: "pac003", Name: "Pedro Oliveira", NationalID: "345.678.901-23", HealthCardID: "345678901234567", BirthDate: birth(1990, time.December, 5), Sex: "M", Phone: "(11) 98765-4323", Address: "Rua do Comércio, 789 - Centro", MotherName: "Carmen Oliveira", MotherNationalID: "333.444.555-66", Priority: registry.PriorityNormal},
		{ID: "pac004", Name: "Ana Costa", NationalID: "456.789.012-34", HealthCardID: "456789012345678", BirthDate: birth(1968, time.September, 18), Sex: "F", Phone: "(11) 98765-4324", Address: "Praça da República, 321 - Centro", MotherName: "Helena Costa", MotherNationalID: "444.555.666-77", Priority: registry.PriorityPriority},
		{ID: "pac005", Name: "Carlos Ferreira", NationalID: "567.890.123-45", HealthCardID: "567890123456789", BirthDate: birth(2010, time.April, 30), Sex: "M", Phone: "(11) 98765-4325", Address: "Rua da Escola, 654 - Centro", MotherName: "Fernanda Ferreira", MotherNationalID: "555.666.777-88", Priority: registry.PriorityNormal},
		{ID: "pac023", Name: "Sergio Lima", NationalID: "345.678.901-25", HealthCardID: "345678901234569", BirthDate: birth(1952, time.October, 9), Sex: "M", Phone: "(11) 98765-4343", Address: "Rua da Emergência, 707 - Centro", MotherName: "Sebastiana Lima", MotherNationalID: "333.444.555-68", Priority: registry.PriorityUrgent},
	}
}

type agenda struct {
	facilityID     string
	professionalID string
	specialty      string
	quota          int
}

func demoAgendas() []agenda {
	return []agenda{
		{"ubs001", "med001", "Clínica Geral", 200},
		{"ubs001", "med002", "Pediatria", 120},
		{"ubs001", "med004", "Cardiologia", 40},
		{"ubs002", "med006", "Clínica Geral", 200},
		{"hospital001", "med008", "Ortopedia", 30},
		{"ubs003", "med014", "Neurologia", 20},
	}
}
