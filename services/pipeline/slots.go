// File: services/pipeline/slots.go
package pipeline

import "frontdesk/models"

// slotAffinity is the symmetric relation of slots that are natural to ask
// about in one question.
var slotAffinity = [][2]string{
	{models.SlotName, models.SlotPhone},
	{models.SlotDay, models.SlotTime},
	{models.SlotService, models.SlotTime},
	{models.SlotService, models.SlotDay},
}

func related(a, b string) bool {
	for _, pair := range slotAffinity {
		if (pair[0] == a && pair[1] == b) || (pair[0] == b && pair[1] == a) {
			return true
		}
	}
	return false
}

// GroupSlots partitions missing slots into ask-together groups of at most
// two. Greedy single pass: the first ungrouped slot claims the first
// remaining slot related to it, otherwise stands alone. Ties break by scan
// order.
func GroupSlots(slots []string) [][]string {
	remaining := append([]string(nil), slots...)
	var groups [][]string
	for len(remaining) > 0 {
		first := remaining[0]
		remaining = remaining[1:]

		matched := -1
		for i, candidate := range remaining {
			if related(first, candidate) {
				matched = i
				break
			}
		}
		if matched >= 0 {
			groups = append(groups, []string{first, remaining[matched]})
			remaining = append(remaining[:matched], remaining[matched+1:]...)
		} else {
			groups = append(groups, []string{first})
		}
	}
	return groups
}
