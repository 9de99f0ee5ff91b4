package compiler

import "fmt"

// Visibility is the three-way access window on class members.
type Visibility int

const (
	Public Visibility = iota
	Protected
	Private
)

func (v Visibility) String() string {
	switch v {
	case Public:
		return "public"
	case Protected:
		return "protected"
	case Private:
		return "private"
	}
	return "?"
}

// Class is a user-defined type: a name, an optional parent (only "Object"
// is rootless), visibility-tagged method and attribute buckets, an
// optional explicit constructor, and the implicit default-initializer
// instructions run before it. Own members only — inherited members are
// reached through Parent, never copied down.
type Class struct {
	Name        string
	Parent      *Class
	Constructor *Function
	Implicit    []Instruction

	// ImplicitThis is the one receiver binding shared by every method this
	// class declares (constructor included) and by Implicit's default
	// field initializers, so the generator can lower them all against a
	// single stable identity instead of reconciling several distinct
	// "this" allocas that all mean the same receiver.
	ImplicitThis *Alloca

	methods     map[string][]*Function
	methodVis   map[*Function]Visibility
	methodOrder []*Function
	attrs       []*Alloca
	attrVis     map[*Alloca]Visibility
	attrByName  map[string]*Alloca
}

func NewClass(name string) *Class {
	return &Class{
		Name:         name,
		ImplicitThis: NewAlloca(ClassType(name), "this"),
		methods:      make(map[string][]*Function),
		methodVis:    make(map[*Function]Visibility),
		attrByName:   make(map[string]*Alloca),
	}
}

// SetParent installs parent as the class's base, rejecting a transitive
// cycle (a class may not derive from itself, directly or indirectly).
func (c *Class) SetParent(parent *Class) error {
	for p := parent; p != nil; p = p.Parent {
		if p == c {
			return makeSemanticError("class %s cannot derive from itself", c.Name)
		}
	}
	c.Parent = parent
	return nil
}

// Attributes returns the class's own attributes in declaration order.
func (c *Class) Attributes() []*Alloca { return c.attrs }

// AddAttribute registers a at the given visibility, rejecting a duplicate
// name within this class's own members.
func (c *Class) AddAttribute(a *Alloca, vis Visibility) error {
	if _, exists := c.attrByName[a.Name]; exists {
		return makeSemanticError("redefinition of attribute %s in class %s", a.Name, c.Name)
	}
	if c.attrVis == nil {
		c.attrVis = make(map[*Alloca]Visibility)
	}
	c.attrs = append(c.attrs, a)
	c.attrVis[a] = vis
	c.attrByName[a.Name] = a
	return nil
}

// AddMethod registers fn at the given visibility. A method named after the
// class is the explicit constructor, which must be void and take no
// arguments beyond the synthetic "this". Overload sets are keyed by name;
// duplicate (name, argtypes) within this class is rejected.
func (c *Class) AddMethod(fn *Function, vis Visibility) error {
	if fn.Name == c.Name {
		if !fn.IsVoid() {
			return makeIncompatibilityError("constructor %s must be void", c.Name)
		}
		if len(fn.Args) > 0 {
			return makeIncompatibilityError("constructor %s must not take arguments", c.Name)
		}
		if c.Constructor != nil {
			return makeSemanticError("redefinition of constructor in class %s", c.Name)
		}
	}
	for _, existing := range c.methods[fn.Name] {
		if argTypesMatch(existing.ArgTypes(), fn.ArgTypes()) {
			return makeSemanticError("redefinition of %s in class %s", fn.Name, c.Name)
		}
	}
	c.methods[fn.Name] = append(c.methods[fn.Name], fn)
	c.methodVis[fn] = vis
	c.methodOrder = append(c.methodOrder, fn)
	fn.Owner = c
	if fn.Name == c.Name {
		c.Constructor = fn
	}
	return nil
}

// Methods returns the class's own methods (constructor included) in
// declaration order.
func (c *Class) Methods() []*Function { return c.methodOrder }

// Clear wipes all members while preserving identity and the parent link —
// used to discard pass 1's stub members before pass 2 rebuilds them for
// real.
func (c *Class) Clear() {
	c.methods = make(map[string][]*Function)
	c.methodVis = make(map[*Function]Visibility)
	c.methodOrder = nil
	c.attrs = nil
	c.attrVis = make(map[*Alloca]Visibility)
	c.attrByName = make(map[string]*Alloca)
	c.Constructor = nil
	c.Implicit = nil
}

// levelsFor builds the visibility scan order: Private falls through
// Protected into Public; Protected falls through into Public; Public scans
// only Public.
func levelsFor(vis Visibility) []Visibility {
	switch vis {
	case Private:
		return []Visibility{Private, Protected, Public}
	case Protected:
		return []Visibility{Protected, Public}
	default:
		return []Visibility{Public}
	}
}

func (c *Class) findMethodAtLevel(name string, argTypes []Datatype, lvl Visibility) (*Function, bool) {
	candidates := c.methods[name]
	if argTypes == nil {
		// No arg types to disambiguate: match by unique name.
		for _, fn := range candidates {
			if c.methodVis[fn] == lvl {
				return fn, true
			}
		}
		return nil, false
	}
	for _, fn := range candidates {
		if c.methodVis[fn] == lvl && argTypesMatch(fn.ArgTypes(), argTypes) {
			return fn, true
		}
	}
	return nil, false
}

// GetMethod searches this class under vis's fall-through ladder, then
// ascends to the parent under strictly Public visibility. Pass a nil
// argTypes to match by name alone (used where the caller has no argument
// list to disambiguate with).
func (c *Class) GetMethod(name string, argTypes []Datatype, vis Visibility) (*Function, bool) {
	for _, lvl := range levelsFor(vis) {
		if fn, ok := c.findMethodAtLevel(name, argTypes, lvl); ok {
			return fn, true
		}
	}
	if c.Parent != nil {
		return c.Parent.GetMethod(name, argTypes, Public)
	}
	return nil, false
}

// GetOriginalMethod walks the parent chain (never this class itself)
// looking for a method with the same name, regardless of signature; used
// for the override compatibility check and for vtable slot placement.
func (c *Class) GetOriginalMethod(name string) (*Function, bool) {
	if c.Parent == nil {
		return nil, false
	}
	if fns, ok := c.Parent.methods[name]; ok && len(fns) > 0 {
		return fns[0], true
	}
	return c.Parent.GetOriginalMethod(name)
}

func (c *Class) findAttrAtLevel(name string, lvl Visibility) (*Alloca, bool) {
	a, ok := c.attrByName[name]
	if !ok || c.attrVis[a] != lvl {
		return nil, false
	}
	return a, true
}

// GetAttribute mirrors GetMethod's visibility ladder for field lookup.
func (c *Class) GetAttribute(name string, vis Visibility) (*Alloca, bool) {
	for _, lvl := range levelsFor(vis) {
		if a, ok := c.findAttrAtLevel(name, lvl); ok {
			return a, true
		}
	}
	if c.Parent != nil {
		return c.Parent.GetAttribute(name, Public)
	}
	return nil, false
}

// IsDescendantOf reports whether ancestor is c itself or one of c's
// transitive parents.
func (c *Class) IsDescendantOf(ancestor *Class) bool {
	for p := c; p != nil; p = p.Parent {
		if p == ancestor {
			return true
		}
	}
	return false
}

func (c *Class) String() string { return fmt.Sprintf("class %s", c.Name) }
