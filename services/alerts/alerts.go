package alerts

import (
	"sync"

	"github.com/MarcGrol/basketcheckout/services/basket"
)

type Severity string

const (
	SeverityInfo    Severity = "info"
	SeveritySuccess Severity = "success"
	SeverityWarning Severity = "warning"
	SeverityError   Severity = "error"
)

// Alert is what the presentation layer renders. Rendering and translation of the code happen there.
type Alert struct {
	Code        string         `json:"code"`
	Severity    Severity       `json:"severity"`
	UserMessage string         `json:"userMessage,omitempty"`
	Values      map[string]any `json:"values,omitempty"`
}

func FromMessage(m basket.Message) Alert {
	return Alert{
		Code:        m.Code,
		Severity:    severityOf(m.MessageType),
		UserMessage: m.UserMessage,
		Values:      copyValues(m.Data),
	}
}

func severityOf(t basket.MessageType) Severity {
	switch t {
	case basket.MessageTypeError:
		return SeverityError
	case basket.MessageTypeWarning:
		return SeverityWarning
	case basket.MessageTypeSuccess:
		return SeveritySuccess
	default:
		return SeverityInfo
	}
}

func copyValues(data map[string]any) map[string]any {
	if len(data) == 0 {
		return nil
	}
	values := make(map[string]any, len(data))
	for k, v := range data {
		values[k] = v
	}
	return values
}

// Box holds the alerts currently on display.
type Box struct {
	sync.Mutex
	alerts []Alert
}

func NewBox() *Box {
	return &Box{
		alerts: []Alert{},
	}
}

func (b *Box) Clear() {
	b.Lock()
	defer b.Unlock()

	b.alerts = []Alert{}
}

// Handle projects basket messages onto the box. An alert with the same code and severity is shown once.
func (b *Box) Handle(messages []basket.Message, clearExisting bool) {
	b.Lock()
	defer b.Unlock()

	if clearExisting {
		b.alerts = []Alert{}
	}

	for _, m := range messages {
		alert := FromMessage(m)
		if b.contains(alert) {
			continue
		}
		b.alerts = append(b.alerts, alert)
	}
}

func (b *Box) contains(alert Alert) bool {
	for _, a := range b.alerts {
		if a.Code == alert.Code && a.Severity == alert.Severity {
			return true
		}
	}
	return false
}

func (b *Box) List() []Alert {
	b.Lock()
	defer b.Unlock()

	result := make([]Alert, len(b.alerts))
	copy(result, b.alerts)
	return result
}
