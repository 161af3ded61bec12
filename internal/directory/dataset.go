package directory

import "strings"

// simulatedDoctors stands in for the public directory when no URL is
// configured, so local development works offline.
var simulatedDoctors = []DirectoryDoctor{
	{Name: "Sophie Laurent", Specialty: "Pneumologie", City: "Lyon", RPPS: "10003456789"},
	{Name: "Marc Petit", Specialty: "Médecine du sommeil", City: "Paris", RPPS: "10004567890"},
	{Name: "Isabelle Moreau", Specialty: "Cardiologie", City: "Marseille", RPPS: "10005678901"},
	{Name: "Thomas Roux", Specialty: "Médecine générale", City: "Toulouse", RPPS: "10006789012"},
	{Name: "Nathalie Girard", Specialty: "ORL", City: "Bordeaux", RPPS: "10007890123"},
}

// simulatedMedications covers the prescriptions common in sleep apnea
// follow-up plus frequent comorbidity treatments.
var simulatedMedications = []Medication{
	{CIS: "60234100", Name: "MODIODAL 100 mg, comprimé", Form: "comprimé", Route: "orale"},
	{CIS: "64287350", Name: "AMLODIPINE 5 mg, gélule", Form: "gélule", Route: "orale"},
	{CIS: "67119691", Name: "METFORMINE 850 mg, comprimé pelliculé", Form: "comprimé", Route: "orale"},
	{CIS: "63628777", Name: "RAMIPRIL 5 mg, comprimé", Form: "comprimé", Route: "orale"},
	{CIS: "66595239", Name: "ATORVASTATINE 20 mg, comprimé pelliculé", Form: "comprimé", Route: "orale"},
	{CIS: "69576119", Name: "LEVOTHYROX 75 µg, comprimé sécable", Form: "comprimé", Route: "orale"},
	{CIS: "62170486", Name: "VENTOLINE 100 µg, suspension pour inhalation", Form: "suspension", Route: "inhalée"},
	{CIS: "60002283", Name: "KARDEGIC 75 mg, poudre pour solution buvable", Form: "poudre", Route: "orale"},
	{CIS: "68900779", Name: "SERTRALINE 50 mg, gélule", Form: "gélule", Route: "orale"},
	{CIS: "61266250", Name: "MELATONINE LP 2 mg, comprimé à libération prolongée", Form: "comprimé", Route: "orale"},
}

func filterDoctors(query string) []DirectoryDoctor {
	needle := strings.ToLower(strings.TrimSpace(query))
	out := []DirectoryDoctor{}
	for _, d := range simulatedDoctors {
		if strings.Contains(strings.ToLower(d.Name), needle) ||
			strings.Contains(strings.ToLower(d.Specialty), needle) ||
			strings.Contains(strings.ToLower(d.City), needle) {
			out = append(out, d)
		}
	}
	return out
}

func filterMedications(query string) []Medication {
	needle := strings.ToLower(strings.TrimSpace(query))
	out := []Medication{}
	for _, m := range simulatedMedications {
		if strings.Contains(strings.ToLower(m.Name), needle) || m.CIS == needle {
			out = append(out, m)
		}
	}
	return out
}
