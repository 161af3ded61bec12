package events

// Event types pushed to connected clients. Receiving one instructs the UI to
// refresh its cached view of the named entity.
const (
	TypeRelationshipUpdated = "relationship.updated"
	TypeMessageCreated      = "message.created"
	TypeAppointmentCreated  = "appointment.created"
)

// RelationshipUpdatedV1 is emitted when a doctor-patient relationship is
// created or changes status.
type RelationshipUpdatedV1 struct {
	RelationshipID string `json:"relationship_id"`
	DoctorID       string `json:"doctor_id"`
	PatientID      string `json:"patient_id"`
	Status         string `json:"status"`
}

// MessageCreatedV1 is emitted when a message lands in a conversation.
type MessageCreatedV1 struct {
	ConversationID string `json:"conversation_id"`
	MessageID      string `json:"message_id"`
	SenderUserID   string `json:"sender_user_id"`
}

// AppointmentCreatedV1 is emitted when an appointment is booked.
type AppointmentCreatedV1 struct {
	AppointmentID string `json:"appointment_id"`
	DoctorID      string `json:"doctor_id"`
	PatientID     string `json:"patient_id"`
}
