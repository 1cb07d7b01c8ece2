/*
Package di injects dependencies into structs and lets them expose values to the structs
they create.

A struct opts in with `di` struct tags and explicit declarations:

	type Sprite struct {
		scene.Drawable // embedded base, activated first

		Textures *TextureStore `di:"resolve"`
		Audio    *AudioManager `di:"resolve,optional"`
		Theme    Theme         `di:"cache"`
	}

	func (s *Sprite) Load(clock *Clock) error { ... }

	func init() {
		di.MustDeclare(
			di.Loader((*Sprite).Load),
			di.CacheSelf[*Sprite](),
		)
	}

A caller creates the instance, activates it, and merges dependencies for its children:

	deps, err := di.NewDependencies(
		di.WithValue(textures),
		di.WithValueAs[Clock](clock),
	)

	s := &Sprite{Theme: dark}
	err = di.Activate(s, deps)

	childDeps, err := di.MergeDependencies(s, deps)

The scan of a struct type happens once, the first time an instance of it is used. The
resulting activator is cached for the lifetime of the [Registry] and shared by all goroutines.
*/
package di
