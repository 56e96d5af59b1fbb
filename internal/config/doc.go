// Package config defines the chain deployment configuration model.
//
// Two YAML documents describe a chain instance: the chart defaults
// ([ChartDefaults], the chart's own values.yaml) and the instance override
// document ([ChainValues], the values handed to Helm). [Params] carries the
// per-instance parameters supplied by the operator, and [Merge] applies them
// over the override document.
//
// [Load] reads the tool's own configuration file (parameters plus cluster,
// registry, storage and DNS settings) through viper.
package config
