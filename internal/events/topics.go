package events

// Topic constants for domain events emitted by the platform.
const (
	TopicBookingAdded    = "booking.added"
	TopicBookingUpdated  = "booking.updated"
	TopicBookingRemoved  = "booking.removed"
	TopicRewardApplied   = "reward.applied"
	TopicRewardRemoved   = "reward.removed"
	TopicRewardDropped   = "reward.dropped"
	TopicReviewSubmitted = "review.submitted"
)

// DefaultTopics returns the canonical list of topics that support notifications.
func DefaultTopics() []string {
	return []string{
		TopicBookingAdded,
		TopicBookingUpdated,
		TopicBookingRemoved,
		TopicRewardApplied,
		TopicRewardRemoved,
		TopicRewardDropped,
		TopicReviewSubmitted,
	}
}
