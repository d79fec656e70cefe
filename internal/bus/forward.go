package bus

import "encoding/json"

// forward marshals evt and hands it to the attached Transport, keyed by the
// event's Go type name.
func (b *EventBus) forward(eventTypeName string, evt Event) error {
	payload, err := json.Marshal(evt)
	if err != nil {
		return err
	}
	return b.transport.Forward(eventTypeName, payload)
}
