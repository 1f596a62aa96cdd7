package leave

import "errors"

var (
	ErrLeaveRequestNotFound         = errors.New("Leave request not found")
	ErrLeaveRequestAlreadyProcessed = errors.New("Leave request already processed")
	ErrLeaveRequestApproved         = errors.New("Approved leave request cannot be modified")
	ErrInvalidDateRange             = errors.New("end_date must not be before start_date")
)
