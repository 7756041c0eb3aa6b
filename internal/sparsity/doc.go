// Package sparsity implements magnitude-based weight sparsification.
//
// A Controller wraps the weighted layers of an nn.Module with BinaryMask
// operands. SetSparsityLevel selects an importance-score threshold that drops
// the requested fraction of weights and rewrites the masks of every unfrozen
// layer. In Global mode one threshold is computed over the pooled scores of
// all layers; in Local mode each layer gets its own threshold for the same
// level.
//
// Example:
//
//	ctrl, err := sparsity.NewController(model, sparsity.Config{
//	    SparsityInit: 0.1,
//	    Mode:         "global",
//	})
//	if err != nil {
//	    return err
//	}
//	for epoch := range epochs {
//	    if err := ctrl.Scheduler().EpochStep(); err != nil {
//	        return err
//	    }
//	    train(model)
//	}
//	ctrl.Statistics().Render(os.Stdout)
//
// The controller does no locking. Calls must come from one goroutine, and
// the weights must not be written while a call is in progress.
package sparsity
