// Package shelterml predicts shelter animal outcomes from intake records.
//
// The pipeline has two stages that communicate through CSV files:
//
//   - features: reads the raw train/test tables, filters rows with an
//     unknown sex, and expands the categorical fields (sex, age, breed,
//     color, animal type, datetime, name) into numeric columns. A YAML
//     manifest records the learned vocabularies and the column order.
//   - train: reads the cleaned tables, fits a 5-class gradient boosted
//     tree ensemble (package boost) with a softmax objective, and writes a
//     submission of per-class probabilities for every test row.
//
// # Quick Start
//
//	shelterml run --config shelterml.yaml
//
// or the stages separately:
//
//	shelterml features --raw-train train.csv --raw-test test.csv
//	shelterml train --missing native
//
// Configuration is read from shelterml.yaml, SHELTERML_* environment
// variables and flags, in increasing order of precedence.
//
// # Packages
//
//   - dataset: raw record reader, numeric tables and outcome labels
//   - features: feature steps, the Builder and the manifest
//   - boost: histogram GBDT trainer and model
//   - metrics: multi-class log loss, accuracy and confusion matrix
//   - submission: column alignment, missing policy and submission writer
//   - pipeline: the two stages wired together
//   - pkg/config, pkg/errors, pkg/log: configuration, errors, logging
package shelterml
