package validation

// Validator groups the checks the engine runs before accepting configuration.
// Callers can swap in stricter rules by wrapping Rules.
type Validator interface {
	Config(options map[string]any) error
	Src(path string) error
	Method(name string, handler any) error
	Plugin(plugin any) error
	Target(target string) error
	Extension(fn any) error
	Transformer(transformer any) error
	Callback(fn any) error
	Adapter(name string, adapter any) error
	Command(name string, run any) error
}

// Rules is the default Validator. Targets lists the accepted target names.
type Rules struct {
	Targets []string
}

var _ Validator = Rules{}

func (r Rules) Config(options map[string]any) error { return CheckConfig(options) }
func (r Rules) Src(path string) error { return CheckSrc(path) }
func (r Rules) Method(name string, handler any) error { return CheckMethod(name, handler) }
func (r Rules) Plugin(plugin any) error { return CheckPlugin(plugin) }
func (r Rules) Target(target string) error { return CheckTarget(target, r.Targets...) }
func (r Rules) Extension(fn any) error { return CheckExtension(fn) }
func (r Rules) Transformer(transformer any) error { return CheckTransformer(transformer) }
func (r Rules) Callback(fn any) error { return CheckCallback(fn) }
func (r Rules) Adapter(name string, adapter any) error { return CheckAdapter(name, adapter) }
func (r Rules) Command(name string, run any) error { return CheckCommand(name, run) }
