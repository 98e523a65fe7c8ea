package processors

import "time"

type CarrierTrackingResults struct {
	TrackingNumber     string
	Status             string
	Delivered          bool
	Returned           bool
	DeliveryDate       *time.Time
	DeliveryInfo       string
	Recipient          string
	StationOrigin      string
	StationDestination string
	LastCheckedAt      *time.Time
}
