// Package serialization provides the text model format for saving and loading
// trained linear models.
//
// A model file is line oriented and human readable:
//
//	Format Structure:
//	  convex-model 1              magic word and format version
//	  algorithm <name>            solver that produced the weights
//	  loss <name>                 objective loss (optional)
//	  classes <k> [labels...]     number of classes and their labels (0 for regression)
//	  features <m>                feature dimension, bias excluded
//	  bias                        present when every row carries a trailing bias weight
//	  param <key> <value>         free-form training parameters (repeatable)
//	  checksum <hex>              SHA-256 of the weight section
//	  w                           start of the weight section
//	  <float>                     one weight per line, rows concatenated
//
// A binary model or a regressor stores one row; a k-class one-vs-rest model
// stores k rows. Each row has m weights, plus one when bias is set.
//
// Example usage:
//
//	// Save a model
//	writer, err := serialization.NewModelWriter("model.txt")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if err := writer.WriteModel(model); err != nil {
//	    log.Fatal(err)
//	}
//	writer.Close()
//
//	// Load a model
//	reader, err := serialization.NewModelReader("model.txt")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	model, err := reader.ReadModel()
//	reader.Close()
package serialization
