package directory

// DirectoryDoctor is a doctor-search hit. Registered entries come from the
// local registry and carry the doctor_id a patient needs to request an
// association; the rest come from the public directory.
type DirectoryDoctor struct {
	DoctorID   string `json:"doctor_id,omitempty"`
	Name       string `json:"name"`
	Specialty  string `json:"specialty,omitempty"`
	City       string `json:"city,omitempty"`
	RPPS       string `json:"rpps,omitempty"`
	Registered bool   `json:"registered"`
}

// Medication is one entry of the French medication database.
type Medication struct {
	CIS   string `json:"cis"`
	Name  string `json:"name"`
	Form  string `json:"form,omitempty"`
	Route string `json:"route,omitempty"`
}
