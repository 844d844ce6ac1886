package model

// WhitelistEntry is a pre-loaded roster record used only to gate
// registration: the (ExternalID, Name) pair asserted by a registrant
// must match a row in the roster for the chosen role.  Student and
// teacher rosters live in separate tables (student_info and
// teacher_info) with identical shapes.
//
// Fields:
//  ID         – primary key identifier.
//  Name       – real name as kept by the institution.
//  ExternalID – student number or staff number.
//  Department – department on record, used to backfill registration.
type WhitelistEntry struct {
	ID         uint64 // student_info.id / teacher_info.id
	Name       string // .name
	ExternalID string // .student_id / .teacher_id
	Department string // .department
}
