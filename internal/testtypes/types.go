package testtypes

import (
	"reflect"

	"github.com/sectrean/di-activator/internal/errors"
)

var (
	TypeLogger   = reflect.TypeFor[Logger]()
	TypeWidget   = reflect.TypeFor[Widget]()
	TypeBase     = reflect.TypeFor[Base]()
	TypeDerived  = reflect.TypeFor[Derived]()
	TypeClock    = reflect.TypeFor[*Clock]()
	TypeBoxPtr   = reflect.TypeFor[*Box]()
	TypeDrawable = reflect.TypeFor[Drawable]()
)

// Logger is a dependency resolved by interface.
type Logger interface {
	Log(msg string)
}

// MemoryLogger records messages.
type MemoryLogger struct {
	Messages []string
}

func (l *MemoryLogger) Log(msg string) {
	l.Messages = append(l.Messages, msg)
}

// Clock is a dependency resolved by pointer.
type Clock struct {
	Now float64
}

// Theme is a value type exposed to descendants.
type Theme struct {
	Name string
}

// Drawable is implemented by *Box.
type Drawable interface {
	Draw() string
}

// Plain has no activation members.
type Plain struct {
	Value int
}

// Widget requires a Logger.
type Widget struct {
	Logger Logger `di:"resolve"`
}

// Base and Derived both expose a string; Derived must shadow Base.
type Base struct {
	Name string `di:"cache"`
}

type Derived struct {
	Base

	Name string `di:"cache"`
}

// Box is a root drawable that resolves a clock and records the order of activation.
type Box struct {
	Clock *Clock `di:"resolve"`
	Trace []string
}

func (b *Box) Draw() string {
	return "box"
}

func (b *Box) Load() {
	b.Trace = append(b.Trace, "Box.Load")
}

// Panel embeds Box; its loader reads the clock injected into Box.
type Panel struct {
	Box

	Logger      Logger `di:"resolve"`
	ClockAtLoad *Clock
}

func (p *Panel) Load(theme Theme) error {
	if p.Clock == nil {
		return errors.New("clock not injected")
	}

	p.ClockAtLoad = p.Clock
	p.Trace = append(p.Trace, "Panel.Load "+theme.Name)
	return nil
}

// Screen embeds Panel for a three level chain.
type Screen struct {
	Panel

	Theme Theme `di:"resolve,cache"`
	Title string
}

func (s *Screen) Load() {
	s.Trace = append(s.Trace, "Screen.Load")
}

func (s *Screen) Caption() string {
	return s.Title + " (" + s.Theme.Name + ")"
}

// node is an unexported base struct.
type node struct {
	Logger Logger `di:"resolve"`
	Loaded []string
}

// Node names the unexported base of Leaf so declarations can refer to it.
type Node = node

func (n *node) Load(theme Theme) {
	n.Loaded = append(n.Loaded, "node.Load "+theme.Name)
}

func (n *node) Draw() string {
	return "node"
}

// Leaf embeds the unexported node.
type Leaf struct {
	node

	Name string `di:"cache"`
}

// Base returns the embedded node.
func (l *Leaf) Base() *Node {
	return &l.node
}

// Overlay declares two loaders.
type Overlay struct{}

func (*Overlay) LoadA() {}
func (*Overlay) LoadB() {}

// Optional has an optional dependency.
type Optional struct {
	Logger Logger `di:"resolve,optional"`
	Clock  *Clock `di:"resolve,tag=game"`
}

// Misconfigured has tags that cannot be used.
type Misconfigured struct {
	hidden Logger `di:"resolve"`
	Bad    string `di:"inject"`
}

// Hidden returns the unexported field so it is not reported as unused.
func (m *Misconfigured) Hidden() Logger {
	return m.hidden
}

// BrokenChild embeds a misconfigured base.
type BrokenChild struct {
	Misconfigured

	Logger Logger `di:"resolve"`
}

// Faulty provides a value that fails with Err.
type Faulty struct {
	Err error
}

func (f *Faulty) Value() (string, error) {
	return "faulty", f.Err
}
