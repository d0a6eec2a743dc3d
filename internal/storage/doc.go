// Package storage persists runs on disk, one directory per run:
//
//	<base>/<preset>_<unix>/
//	    metadata.json  run summary and final metrics
//	    config.yaml    the full config the run was started with
//	    frames.csv     one row per particle per stored frame
//	    perf.csv       optional stage timing windows
//
// Frames are written and read with gocsv; [ExportJSON] emits a whole run as a
// single JSON document.
package storage
