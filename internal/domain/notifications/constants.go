package notifications

const (
	TypeLeaveSubmitted    = "leave_submitted"
	TypeLeaveApproved     = "leave_approved"
	TypeLeaveRejected     = "leave_rejected"
	TypeFeedbackSubmitted = "feedback_submitted"
	TypeFeedbackReplied   = "feedback_replied"
	TypeSalaryUpdated     = "salary_updated"
	TypeAutoClockOut      = "auto_clock_out"
)
