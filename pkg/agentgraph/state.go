package agentgraph

import (
	"encoding/json"
	"sort"
)

// Fixed document keys of the shared state. Everything else in the
// document form is a content slot.
const (
	keyInitialTask  = "initial_task"
	keyErrorMessage = "error_message"
	keyCurrentStep  = "current_step"
	keyMessages     = "messages"
)

// SharedState is the mutable state of one run. It is exclusively owned
// by the Runner; nodes never mutate it directly, they return a Delta.
type SharedState struct {
	// InitialTask is set once at run start, never rewritten.
	InitialTask string

	// Slots are named content fields, each written by one agent role.
	// A key present with a nil value means "declared but not yet
	// produced" and serializes as null.
	Slots map[string]*string

	// ErrorMessage is set on the first unrecoverable node failure.
	ErrorMessage *string

	// StepCounter increments once per node execution.
	StepCounter int

	// History is the append-only message log. Order is the single
	// source of truth for routing.
	History []Message
}

// NewSharedState seeds a fresh state for a run: the initial task, the
// given slot names declared as null, step zero, empty history.
func NewSharedState(initialTask string, slotNames []string) *SharedState {
	slots := make(map[string]*string, len(slotNames))
	for _, name := range slotNames {
		slots[name] = nil
	}
	return &SharedState{
		InitialTask: initialTask,
		Slots:       slots,
	}
}

// Slot returns the value of a content slot and whether it is set.
func (s *SharedState) Slot(name string) (string, bool) {
	v, ok := s.Slots[name]
	if !ok || v == nil {
		return "", false
	}
	return *v, true
}

// setSlot writes a content slot, declaring it if needed.
func (s *SharedState) setSlot(name, value string) {
	if s.Slots == nil {
		s.Slots = make(map[string]*string)
	}
	s.Slots[name] = &value
}

// Failed reports whether an unrecoverable error has been recorded.
func (s *SharedState) Failed() bool {
	return s.ErrorMessage != nil
}

// LastMessage returns the most recent history entry, if any.
func (s *SharedState) LastMessage() (Message, bool) {
	if len(s.History) == 0 {
		return Message{}, false
	}
	return s.History[len(s.History)-1], true
}

// contextView is the filtered state embedded in agent prompts: set
// slots and the error message, excluding history, the step counter,
// and the initial task.
func (s *SharedState) contextView() map[string]any {
	view := make(map[string]any)
	for name, v := range s.Slots {
		if v != nil {
			view[name] = *v
		}
	}
	if s.ErrorMessage != nil {
		view[keyErrorMessage] = *s.ErrorMessage
	}
	return view
}

// Delta is a node's partial state update. The Runner applies it; nodes
// never see each other's deltas.
type Delta struct {
	// StepIncrement is added to the step counter, once per execution.
	StepIncrement int

	// Messages are appended to history in order.
	Messages []Message

	// SlotName, when non-empty, writes SlotValue to that content slot.
	// At most one slot is written per execution.
	SlotName  string
	SlotValue string

	// ErrorMessage, when non-empty, records an unrecoverable failure.
	ErrorMessage string
}

// apply folds a delta into the state. History is append-only: the
// delta's messages are added after all existing entries.
func (s *SharedState) apply(d Delta) {
	s.StepCounter += d.StepIncrement
	s.History = append(s.History, d.Messages...)
	if d.SlotName != "" {
		s.setSlot(d.SlotName, d.SlotValue)
	}
	if d.ErrorMessage != "" {
		msg := d.ErrorMessage
		s.ErrorMessage = &msg
	}
}

// MarshalJSON produces the boundary document form: fixed keys plus one
// key per declared slot, null when unset.
func (s *SharedState) MarshalJSON() ([]byte, error) {
	doc := make(map[string]any, len(s.Slots)+4)
	doc[keyInitialTask] = s.InitialTask
	doc[keyErrorMessage] = s.ErrorMessage
	doc[keyCurrentStep] = s.StepCounter
	msgs := s.History
	if msgs == nil {
		msgs = []Message{}
	}
	doc[keyMessages] = msgs
	for name, v := range s.Slots {
		doc[name] = v
	}
	return json.Marshal(doc)
}

// UnmarshalJSON restores a state from its document form. Unknown keys
// are treated as content slots.
func (s *SharedState) UnmarshalJSON(data []byte) error {
	var doc struct {
		InitialTask  string    `json:"initial_task"`
		ErrorMessage *string   `json:"error_message"`
		CurrentStep  int       `json:"current_step"`
		Messages     []Message `json:"messages"`
	}
	if err := json.Unmarshal(data, &doc); err != nil {
		return err
	}
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	slots := make(map[string]*string)
	for key, val := range raw {
		switch key {
		case keyInitialTask, keyErrorMessage, keyCurrentStep, keyMessages:
			continue
		}
		var v *string
		if err := json.Unmarshal(val, &v); err != nil {
			return err
		}
		slots[key] = v
	}

	s.InitialTask = doc.InitialTask
	s.ErrorMessage = doc.ErrorMessage
	s.StepCounter = doc.CurrentStep
	s.History = doc.Messages
	s.Slots = slots
	return nil
}

// SlotNames returns the declared slot names in sorted order.
func (s *SharedState) SlotNames() []string {
	names := make([]string, 0, len(s.Slots))
	for name := range s.Slots {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
