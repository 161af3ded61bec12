package terminology

import "strings"

// icd11Fallback is served when the upstream ICD-11 API fails for a reason
// other than a timeout, and doubles as the simulated dataset when no
// credentials are configured. Entries cover the sleep follow-up vocabulary
// the portal actually needs.
var icd11Fallback = []SearchResult{
	{Code: "7A40", Label: "Apnée obstructive du sommeil", System: SystemICD11},
	{Code: "7A41", Label: "Apnée centrale du sommeil", System: SystemICD11},
	{Code: "7A42", Label: "Hypoventilation liée au sommeil", System: SystemICD11},
	{Code: "7A00", Label: "Insomnie chronique", System: SystemICD11},
	{Code: "7A20", Label: "Hypersomnolence idiopathique", System: SystemICD11},
	{Code: "7A60", Label: "Syndrome des jambes sans repos", System: SystemICD11},
	{Code: "BA00", Label: "Hypertension essentielle", System: SystemICD11},
	{Code: "5A11", Label: "Diabète de type 2", System: SystemICD11},
	{Code: "5B81", Label: "Obésité", System: SystemICD11},
	{Code: "CA08", Label: "Asthme", System: SystemICD11},
	{Code: "BA41", Label: "Infarctus aigu du myocarde", System: SystemICD11},
	{Code: "8A68", Label: "Accident vasculaire cérébral", System: SystemICD11},
	{Code: "CA22", Label: "Bronchopneumopathie chronique obstructive", System: SystemICD11},
	{Code: "6A70", Label: "Épisode dépressif", System: SystemICD11},
	{Code: "6B00", Label: "Trouble anxieux généralisé", System: SystemICD11},
}

// icpc2Dataset is the CISP-2 nomenclature subset used for primary care
// coding. It is small and stable, so it ships with the binary instead of
// being fetched.
var icpc2Dataset = []SearchResult{
	{Code: "P06", Label: "Trouble du sommeil", System: SystemICPC2},
	{Code: "R98", Label: "Syndrome d'apnée du sommeil", System: SystemICPC2},
	{Code: "K86", Label: "Hypertension non compliquée", System: SystemICPC2},
	{Code: "K87", Label: "Hypertension compliquée", System: SystemICPC2},
	{Code: "T90", Label: "Diabète non insulinodépendant", System: SystemICPC2},
	{Code: "T82", Label: "Obésité", System: SystemICPC2},
	{Code: "R96", Label: "Asthme", System: SystemICPC2},
	{Code: "R95", Label: "Bronchopneumopathie chronique obstructive", System: SystemICPC2},
	{Code: "K75", Label: "Infarctus aigu du myocarde", System: SystemICPC2},
	{Code: "K90", Label: "Accident vasculaire cérébral", System: SystemICPC2},
	{Code: "P76", Label: "Dépression", System: SystemICPC2},
	{Code: "P74", Label: "Anxiété", System: SystemICPC2},
	{Code: "N07", Label: "Convulsions", System: SystemICPC2},
	{Code: "A04", Label: "Fatigue, faiblesse générale", System: SystemICPC2},
}

// filterDataset case-insensitively matches a query against labels and codes.
func filterDataset(dataset []SearchResult, query string) []SearchResult {
	needle := strings.ToLower(strings.TrimSpace(query))
	out := []SearchResult{}
	for _, r := range dataset {
		if strings.Contains(strings.ToLower(r.Label), needle) ||
			strings.EqualFold(r.Code, needle) {
			out = append(out, r)
		}
	}
	return out
}
