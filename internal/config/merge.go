package config

// Merge applies the instance parameters over the override document and
// returns the result. A non-empty parameter always replaces the document's
// value; an empty one leaves it alone. The input is not modified, and the
// chart defaults are never consulted.
func Merge(values *ChainValues, params Params) *ChainValues {
	out := values.Clone()
	if out == nil {
		out = &ChainValues{}
	}

	if params.ChainName != "" {
		out.Network.ChainName = params.ChainName
	}
	if params.BakingPrivateKey != "" {
		out.setAccountKey(BakerAccount, params.BakingPrivateKey)
	}
	if params.NonBakingPrivateKey != "" {
		out.setAccountKey(NonBakerAccount, params.NonBakingPrivateKey)
	}
	if params.Image != "" {
		out.Images.Tezos = params.Image
	}
	if len(params.Peers) > 0 {
		out.BootstrapPeers = cloneStrings(params.Peers)
	}

	return out
}

func (v *ChainValues) setAccountKey(name, key string) {
	if v.Accounts == nil {
		v.Accounts = make(map[string]Account)
	}
	acct := v.Accounts[name]
	acct.Key = key
	v.Accounts[name] = acct
}
