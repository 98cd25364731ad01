package bollywood

// Definition is the creation descriptor for an actor: a logical type name,
// the address it will be registered under, and the ordered parameters its
// Producer uses to build the actor body. Definition is retained by the
// process so a supervision-driven restart can reinstantiate the actor body
// from the same parameters (spec §4.3: "reinstantiate the actor body with
// the original Definition").
type Definition struct {
	Type    string
	Address Address
	Params  []any
}

// Producer builds a fresh Actor body from a Definition. It is called once
// at creation time and again on every supervision-driven restart.
type Producer func(def Definition) Actor

// Instantiator is the narrow interface a Protocol exposes for building
// actor bodies, matching spec §6's `instantiator() -> {instantiate(def)}`.
type Instantiator interface {
	Instantiate(def Definition) Actor
}

type producerInstantiator struct {
	produce Producer
}

func (p producerInstantiator) Instantiate(def Definition) Actor { return p.produce(def) }

// Protocol names a logical actor type and knows how to instantiate its
// body. Protocol values are typically package-level (one per actor type),
// built once with NewProtocol.
type Protocol struct {
	typeName     string
	instantiator Instantiator
}

// NewProtocol builds a Protocol from a logical type name and a Producer.
func NewProtocol(typeName string, produce Producer) Protocol {
	return Protocol{typeName: typeName, instantiator: producerInstantiator{produce: produce}}
}

func (p Protocol) Type() string              { return p.typeName }
func (p Protocol) Instantiator() Instantiator { return p.instantiator }
func (p Protocol) IsZero() bool               { return p.instantiator == nil }
