// Package boost implements multiclass gradient-boosted decision trees.
//
// Training follows the usual softmax boosting recipe: every round computes
// per-class gradients and hessians of the multiclass log loss, grows one
// depth-wise histogram tree per class and adds its shrunk leaf values to the
// raw scores. Features are quantised once into at most MaxBin bins; NaN values
// get their own bin and are routed to the side that gave the larger gain.
//
// Basic usage:
//
//	params := boost.DefaultParams()
//	trainer := boost.NewTrainer(params).WithCallbacks(boost.LogEvaluation(50))
//	if err := trainer.Fit(X, y); err != nil {
//		return err
//	}
//	proba, err := trainer.Model().PredictProba(Xtest)
package boost
