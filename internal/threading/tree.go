package threading

import "mailscrape/internal/ponymail"

// UnansweredThreadIDs walks the thread forest and returns the tids of nodes
// that are both a thread root (nest 0) and childless. Replies without further
// replies never qualify.
func UnansweredThreadIDs(threads []ponymail.ThreadNode) map[string]struct{} {
	out := map[string]struct{}{}

	stack := make([]*ponymail.ThreadNode, 0, len(threads))
	for i := range threads {
		stack = append(stack, &threads[i])
	}
	for len(stack) > 0 {
		node := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if len(node.Children) == 0 {
			if node.Nest == 0 {
				out[node.TID] = struct{}{}
			}
			continue
		}
		for i := range node.Children {
			stack = append(stack, &node.Children[i])
		}
	}
	return out
}

// UnansweredByThread returns, in source order, the emails whose mid names one
// of the given thread ids.
func UnansweredByThread(emails []ponymail.Email, tids map[string]struct{}, log Logger) []ponymail.Email {
	log = orDiscard(log)
	out := []ponymail.Email{}
	for _, e := range emails {
		if _, ok := tids[e.MID]; ok {
			out = append(out, e)
		}
	}
	log.Debug("matched unanswered threads to emails", "threads", len(tids), "emails", len(out))
	return out
}
