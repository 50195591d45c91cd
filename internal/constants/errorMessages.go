package constants

const (
	StatusError         = "Error"
	StatusCreated       = "Allocation created"
	StatusUpdated       = "Allocation updated"
	StatusDeleted       = "Allocation deleted"
	StatusAdvisorySaved = "Advisory saved"
	StatusInsertFailed  = "Unable to insert"
)

const (
	MsgAllocationNotFound = "This record no longer exists, please refresh"
	MsgStationNotFound    = "Unknown station"
	MsgBadTimestamp       = "Timestamp must be RFC3339"
	MsgMissingStart       = "period_start is required"
	MsgEndBeforeStart     = "period_end must be after period_start"
)
