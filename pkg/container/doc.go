/*
Package container binds role components to names and builds them on demand.

Every registration is validated against its role before it is bound. A
resolution first checks the whole dependency closure of the requested ref
(missing bindings, cycles) and only then constructs anything, depth-first.

	c := container.New(validator)
	_ = c.Register(ctx, domain.KindWorker, "email", container.Instance(EmailWorker{}))
	_ = c.Register(ctx, domain.KindDelegator, "signup", container.Struct[SignupDelegator]())
	d, err := container.Resolve[SignupDelegator](ctx, c, domain.KindDelegator, "signup")

Dependencies are declared with the `team:"kind:name"` struct tag (Struct
providers) or explicitly (Factory providers). A factory can only reach the
dependencies it declared.
*/
package container
