package edge

import "storefront/internal/locale"

const defaultRetryMessage = "Please try again later"

var retryMessages = map[locale.Locale]string{
	"en": defaultRetryMessage,
	"vi": "Vui lòng thử lại sau",
}

// RetryMessage returns the 429 message for l, English when l has no translation.
func RetryMessage(l locale.Locale) string {
	if msg, ok := retryMessages[l]; ok {
		return msg
	}
	return defaultRetryMessage
}
