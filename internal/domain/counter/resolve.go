package counter

// Source names which path produced a counter value
type Source string

const (
	SourceRemote Source = "remote"
	SourceLocal  Source = "local"
	SourceSeed   Source = "seed"
)

// Result is the outcome of one read of a counter backend
type Result struct {
	Value float64
	OK    bool
}

func Found(v float64) Result { return Result{Value: v, OK: true} }

var Missing = Result{}

// ResolveLoad picks the value a load adopts: remote, then local cache, then seed.
func ResolveLoad(remote, local Result) (float64, Source) {
	if remote.OK {
		return remote.Value, SourceRemote
	}
	if local.OK {
		return local.Value, SourceLocal
	}
	return Seed, SourceSeed
}

// ResolveAdd picks the total after an increment. A successful remote
// increment wins outright; otherwise the amount is added to current.
func ResolveAdd(remote Result, current, amount float64) (float64, Source) {
	if remote.OK {
		return remote.Value, SourceRemote
	}
	return current + amount, SourceLocal
}
