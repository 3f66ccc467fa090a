package pool

import "errors"

// Every precondition has its own sentinel so callers can map a rejection to
// a stable failure reason. All rejections leave the pool state untouched.
var (
	ErrPolicyNotFound        = errors.New("policy not found")
	ErrNotPolicyholder       = errors.New("not the policyholder")
	ErrPolicyNotActive       = errors.New("policy not active")
	ErrPolicyExpired         = errors.New("policy expired")
	ErrAlreadyClaimed        = errors.New("policy already has an approved claim")
	ErrInvalidAmount         = errors.New("amount must be positive")
	ErrInvalidDuration       = errors.New("duration must be positive")
	ErrPremiumTooLow         = errors.New("premium below minimum ratio")
	ErrClaimExceedsCoverage  = errors.New("claim exceeds coverage")
	ErrInsufficientPoolFunds = errors.New("insufficient pool funds")
	ErrEmptyDescription      = errors.New("description required")
	ErrClaimNotFound         = errors.New("claim not found")
	ErrClaimResolved         = errors.New("claim already resolved")
	ErrAlreadyVoted          = errors.New("already voted")
	ErrVotingClosed          = errors.New("voting period ended")
	ErrVotingStillOpen       = errors.New("voting still in progress")
	ErrNotParticipant        = errors.New("not a pool participant")

	// ErrTransferFailed is not a precondition rejection: it reports that the
	// outbound value transfer at the end of an operation failed. The
	// operation's state changes are rolled back before it is returned.
	ErrTransferFailed = errors.New("payout transfer failed")
)
