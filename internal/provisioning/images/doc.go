// Package images builds the chart's tool images and pins them in the chain
// values.
//
// Every entry of the chart's tezos_k8s_images catalog, except the excluded
// targets, is built from its source directory under the chart source root
// and pushed. The pushed references replace tezos_k8s_images in the values.
package images
