package disposable

// noCopy makes go vet's copylocks check flag copies of Base.
type noCopy struct{}

func (*noCopy) Lock()   {}
func (*noCopy) Unlock() {}
