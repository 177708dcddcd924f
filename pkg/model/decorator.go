package model

// Decorator enriches a resource with additional metadata after the canonical
// schema-derived structure has been built.
type Decorator interface {
	Decorate(*Resource) error
}

// DecoratorFunc adapts a function into a Decorator.
type DecoratorFunc func(*Resource) error

// Decorate calls the underlying function.
func (fn DecoratorFunc) Decorate(resource *Resource) error {
	return fn(resource)
}

// ApplyDecorators runs each decorator against the resource in order. Nil
// decorators are skipped; the first error stops the chain.
func ApplyDecorators(resource *Resource, decorators ...Decorator) error {
	if resource == nil {
		return nil
	}
	for _, decorator := range decorators {
		if decorator == nil {
			continue
		}
		if err := decorator.Decorate(resource); err != nil {
			return err
		}
	}
	return nil
}
