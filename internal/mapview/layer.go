package mapview

import "sync"

// LayerGroup is a named collection of drawn shapes. Every mutation is published to the
// browsers so their copy of the layer tracks this one.
type LayerGroup struct {
	name   string
	pub    Publisher
	mu     sync.Mutex
	shapes []Shape
}

func NewLayerGroup(name string, pub Publisher) *LayerGroup {
	return &LayerGroup{
		name: name,
		pub:  orNop(pub),
	}
}

func (l *LayerGroup) Name() string {
	return l.name
}

func (l *LayerGroup) Add(shapes ...Shape) {
	if len(shapes) == 0 {
		return
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	l.shapes = append(l.shapes, shapes...)
	l.pub.Broadcast(Command{
		Type: CommandLayerAdd,
		Data: LayerPayload{Layer: l.name, Shapes: shapes},
	})
}

// Replace swaps the layer contents in one step.
func (l *LayerGroup) Replace(shapes []Shape) {
	cp := make([]Shape, len(shapes))
	copy(cp, shapes)

	l.mu.Lock()
	defer l.mu.Unlock()
	l.shapes = cp
	l.pub.Broadcast(Command{
		Type: CommandLayerReplace,
		Data: LayerPayload{Layer: l.name, Shapes: cp},
	})
}

func (l *LayerGroup) Clear() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.shapes = nil
	l.pub.Broadcast(Command{
		Type: CommandLayerClear,
		Data: LayerPayload{Layer: l.name},
	})
}

func (l *LayerGroup) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.shapes)
}

func (l *LayerGroup) Shapes() []Shape {
	l.mu.Lock()
	defer l.mu.Unlock()
	result := make([]Shape, len(l.shapes))
	copy(result, l.shapes)
	return result
}

// Snapshot is the command that brings a freshly connected browser up to date.
func (l *LayerGroup) Snapshot() Command {
	return Command{
		Type: CommandLayerReplace,
		Data: LayerPayload{Layer: l.name, Shapes: l.Shapes()},
	}
}
