// Package catalog lists the node types a workflow can use and provides the
// starter graph new workflows begin with.
package catalog

import (
	"sort"

	"github.com/specialistvlad/burstflow/internal/graph"
)

// Definition describes one node type.
type Definition struct {
	Key         string     `json:"key" yaml:"key"`
	Kind        graph.Kind `json:"-" yaml:"-"`
	Title       string     `json:"title" yaml:"title"`
	Description string     `json:"description" yaml:"description"`
	// Simulated types have no integration in this engine and run through the
	// simulated runner.
	Simulated bool `json:"simulated" yaml:"simulated"`
}

const (
	Webhook     = "webhook"
	WhatsApp    = "whatsapp"
	Email       = "email"
	AIAction    = "ai_action"
	Print       = "print"
	HTTPRequest = "http_request"
	SocketIO    = "socketio"
)

var definitions = map[string]Definition{
	Webhook: {
		Key: Webhook, Kind: graph.KindTrigger, Simulated: true,
		Title:       "Webhook Trigger",
		Description: "Starts the flow with an HTTP request.",
	},
	WhatsApp: {
		Key: WhatsApp, Kind: graph.KindAction, Simulated: true,
		Title:       "Send Message (WhatsApp)",
		Description: "Sends a message to a contact.",
	},
	Email: {
		Key: Email, Kind: graph.KindAction, Simulated: true,
		Title:       "Send E-mail",
		Description: "Sends an e-mail over SMTP.",
	},
	AIAction: {
		Key: AIAction, Kind: graph.KindAction, Simulated: true,
		Title:       "AI Action",
		Description: "Uses AI to process data.",
	},
	Print: {
		Key: Print, Kind: graph.KindAction,
		Title:       "Print",
		Description: "Writes the node params to the run output.",
	},
	HTTPRequest: {
		Key: HTTPRequest, Kind: graph.KindAction,
		Title:       "HTTP Request",
		Description: "Calls a URL and fails on a non-2xx response.",
	},
	SocketIO: {
		Key: SocketIO, Kind: graph.KindAction,
		Title:       "Socket.IO Emit",
		Description: "Emits an event to a socket.io namespace and optionally waits for a reply.",
	},
}

// Lookup returns the definition for key.
func Lookup(key string) (Definition, bool) {
	d, ok := definitions[key]
	return d, ok
}

// ByTitle finds the definition whose title matches exactly. Saved builder
// canvases store the definition itself rather than its key.
func ByTitle(title string) (Definition, bool) {
	for _, d := range definitions {
		if d.Title == title {
			return d, true
		}
	}
	return Definition{}, false
}

// Definitions returns every definition sorted by key.
func Definitions() []Definition {
	out := make([]Definition, 0, len(definitions))
	for _, d := range definitions {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out
}

// SimulatedKeys returns the keys of every simulated definition, sorted.
func SimulatedKeys() []string {
	var keys []string
	for _, d := range Definitions() {
		if d.Simulated {
			keys = append(keys, d.Key)
		}
	}
	return keys
}

// NewNode builds a node of the given type with the catalog's kind and title.
func NewNode(id, key string) (graph.Node, bool) {
	d, ok := Lookup(key)
	if !ok {
		return graph.Node{}, false
	}
	return graph.Node{
		ID:         id,
		Kind:       d.Kind,
		Title:      d.Title,
		Descriptor: graph.Descriptor{Type: d.Key},
	}, true
}

// SampleGraph is the workflow a new builder canvas starts with: a webhook
// fanning out to a WhatsApp message and an e-mail.
func SampleGraph() graph.Graph {
	webhook, _ := NewNode("1", Webhook)
	whatsapp, _ := NewNode("2", WhatsApp)
	email, _ := NewNode("3", Email)
	return graph.Graph{
		Nodes: []graph.Node{webhook, whatsapp, email},
		Edges: []graph.Edge{
			{ID: "e1-2", Source: "1", Target: "2"},
			{ID: "e1-3", Source: "1", Target: "3"},
		},
	}
}
