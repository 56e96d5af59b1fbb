package genesis

import (
	"mime"
	"path/filepath"

	"github.com/imamik/tzchain/internal/config"
)

// Kind distinguishes the two sorts of genesis asset.
type Kind string

const (
	// KindContract is a bootstrap contract file.
	KindContract Kind = "contract"
	// KindCommitment is the bootstrap commitments file.
	KindCommitment Kind = "commitment"
)

const defaultContentType = "application/octet-stream"

// Asset is a local bootstrap file. URL is set once it has been staged.
type Asset struct {
	Kind Kind
	Name string
	Path string
	URL  string
}

// ContentType returns the MIME type implied by the asset's extension.
func (a Asset) ContentType() string {
	if ct := mime.TypeByExtension(filepath.Ext(a.Name)); ct != "" {
		return ct
	}
	return defaultContentType
}

// Assets lists the bootstrap files declared in params: contracts in the
// given order, followed by the commitments file if any.
func Assets(params config.Params) []Asset {
	assets := make([]Asset, 0, len(params.BootstrapContracts)+1)
	for _, name := range params.BootstrapContracts {
		assets = append(assets, Asset{
			Kind: KindContract,
			Name: name,
			Path: params.ContractPath(name),
		})
	}
	if params.BootstrapCommitments != "" {
		assets = append(assets, Asset{
			Kind: KindCommitment,
			Name: params.BootstrapCommitments,
			Path: params.CommitmentsPath(),
		})
	}
	return assets
}
