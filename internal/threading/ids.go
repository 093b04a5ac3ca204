package threading

import "strings"

const replyPrefix = "Re: "

// StripAngles removes one leading '<' and one trailing '>' from a message id.
func StripAngles(id string) string {
	id = strings.TrimPrefix(id, "<")
	return strings.TrimSuffix(id, ">")
}
