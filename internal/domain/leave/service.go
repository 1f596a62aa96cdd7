package leave

import "context"

type LeaveService interface {
	Create(ctx context.Context, req CreateLeaveRequestRequest) (CreateLeaveRequestResponse, error)
	GetByID(ctx context.Context, id string) (LeaveRequestResponse, error)
	List(ctx context.Context, filter LeaveRequestFilter) (ListLeaveRequestResponse, error)
	Update(ctx context.Context, req UpdateLeaveRequestRequest) (LeaveRequestResponse, error)
	Delete(ctx context.Context, id string) error
	Approve(ctx context.Context, id string, approvedBy string) (LeaveRequestResponse, error)
	Reject(ctx context.Context, req RejectLeaveRequestRequest) (LeaveRequestResponse, error)
}
