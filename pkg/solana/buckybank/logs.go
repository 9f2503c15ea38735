package buckybank

import (
	"encoding/base64"
	"strings"

	"github.com/pkg/errors"
)

const (
	// EventLogPrefix marks a log line carrying base64 encoded event data.
	EventLogPrefix = "Program data: "

	instructionLogPrefix = "Program log: Instruction: "
)

// EventLog renders event data as a program log line.
func EventLog(data []byte) string {
	return EventLogPrefix + base64.StdEncoding.EncodeToString(data)
}

// InstructionLog is the log line announcing the instruction being processed.
func InstructionLog(t InstructionType) string {
	return instructionLogPrefix + t.String()
}

// ParseEventsFromLogs decodes every event line in a transaction's logs, in
// emission order. Lines that are not event data, or that carry another
// program's data, are skipped.
func ParseEventsFromLogs(logs []string) ([]Event, error) {
	var events []Event
	for _, line := range logs {
		if !strings.HasPrefix(line, EventLogPrefix) {
			continue
		}

		data, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(line, EventLogPrefix))
		if err != nil {
			return nil, errors.Wrap(err, "invalid event log encoding")
		}
		if GetEventType(data) == EventTypeUnknown {
			continue
		}

		event, err := DecodeEvent(data)
		if err != nil {
			return nil, err
		}
		events = append(events, event)
	}
	return events, nil
}
