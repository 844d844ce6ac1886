package model

// Room categories as stored in rooms.category.
const (
	RoomSelfStudy = "self_study"
	RoomComputer  = "computer"
	RoomBook      = "book"
)

// Room statuses as stored in rooms.status.
const (
	RoomAvailable   = "available"
	RoomMaintenance = "maintenance"
	RoomUnavailable = "unavailable"
)

// Room describes a bookable study room.  Seats and equipment belong
// exclusively to their room and are removed with it.
//
// Fields:
//  ID          – primary key identifier.
//  Name        – display name of the room.
//  Category    – one of the Room* category constants.
//  Capacity    – number of people the room holds.
//  Description – free text shown to users.
//  ManagerID   – user ID of the managing teacher (nullable).
//  Status      – one of the Room* status constants.
type Room struct {
	ID          uint64  // rooms.id
	Name        string  // rooms.name
	Category    string  // rooms.category
	Capacity    int     // rooms.capacity
	Description string  // rooms.description
	ManagerID   *uint64 // rooms.manager_id (nullable)
	Status      string  // rooms.status
}

// Seat is a single bookable place inside a room.  Seat numbers are
// unique within a room by convention; the schema does not enforce it.
//
// Fields:
//  ID       – primary key identifier.
//  RoomID   – owning room.
//  Number   – seat label, e.g. "A12".
//  IsActive – whether the seat may be booked.
type Seat struct {
	ID       uint64 // seats.id
	RoomID   uint64 // seats.room_id
	Number   string // seats.number
	IsActive bool   // seats.is_active
}

// Equipment is a reservable device installed in a room.
//
// Fields:
//  ID          – primary key identifier.
//  RoomID      – owning room.
//  Name        – equipment name, e.g. "Projector".
//  Description – free text.
//  IsActive    – whether the equipment may be booked.
type Equipment struct {
	ID          uint64 // equipment.id
	RoomID      uint64 // equipment.room_id
	Name        string // equipment.name
	Description string // equipment.description
	IsActive    bool   // equipment.is_active
}
