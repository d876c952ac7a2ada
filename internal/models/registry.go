package models

// New returns a pointer to an empty document for a collection, for callers
// that only know the collection name at runtime.
func New(collection string) (any, bool) {
	switch collection {
	case CollectionTravelOrders:
		return &TravelOrder{}, true
	case CollectionAccomplishments:
		return &AccomplishmentReport{}, true
	case CollectionDeviceIDChanges:
		return &DeviceIDChange{}, true
	case CollectionOperatorDeviceSummary:
		return &OperatorDeviceSummary{}, true
	case CollectionEarlyRestRequests:
		return &EarlyRestRequest{}, true
	case CollectionITServiceOrders:
		return &ITServiceOrder{}, true
	case CollectionLeaveRequests:
		return &LeaveRequest{}, true
	case CollectionClients:
		return &Client{}, true
	}
	return nil, false
}

// Reviewable reports whether documents in the collection follow the
// Pending -> Approved/Rejected workflow.
func Reviewable(collection string) bool {
	switch collection {
	case CollectionTravelOrders, CollectionAccomplishments, CollectionDeviceIDChanges,
		CollectionEarlyRestRequests, CollectionITServiceOrders, CollectionLeaveRequests:
		return true
	}
	return false
}
