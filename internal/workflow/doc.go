// Package workflow orchestrates the audiobook pipeline. The manager runs
// one worker per stage over Redis Streams, routes handler results to the
// next stage, and applies retry policy with dead-lettering when a job
// exhausts its attempts. The router owns the post-creation dispatch
// decision between enrichment and chapter scraping.
package workflow
