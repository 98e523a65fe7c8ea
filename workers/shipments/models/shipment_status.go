package models

// ShipmentStatus is the local lifecycle tag of a shipment.
type ShipmentStatus string

const (
	StatusDraft     ShipmentStatus = "DRAFT"
	StatusReady     ShipmentStatus = "READY"
	StatusPickedUp  ShipmentStatus = "PICKED_UP"
	StatusInTransit ShipmentStatus = "IN_TRANSIT"
	StatusDelivered ShipmentStatus = "DELIVERED"
)

// IsFinal reports whether the courier no longer needs to be asked about it.
func (s ShipmentStatus) IsFinal() bool {
	return s == StatusDelivered
}

// Trackable reports whether the courier has the parcel.
func (s ShipmentStatus) Trackable() bool {
	return s == StatusPickedUp || s == StatusInTransit
}

type ShipmentSource string

const (
	SourceStore  ShipmentSource = "ESHOP"
	SourceManual ShipmentSource = "MANUAL"
)

type PickupListStatus string

const (
	PickupPending  PickupListStatus = "PENDING"
	PickupPickedUp PickupListStatus = "PICKED_UP"
)
