// Package workflow runs the library stages as one pass.
//
// The Manager assembles the stage handlers, lets stage.Graph order them by
// the areas they read and write, and executes them under a lock on the
// library base directory. Each run gets a run ID carried in every log line;
// stage outcomes feed the run summary and the metrics textfile. Stages run
// one after another unless workflow.parallel_stages is set, in which case the
// stages of one graph level run together.
//
// A failing stage ends the run. Whether an item failure fails its stage is
// decided by the stage's policy, not here.
package workflow
