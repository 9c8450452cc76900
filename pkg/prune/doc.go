/*
Package prune strips reactions from a feasible network while keeping the
objective reaction able to carry flux.

Two strategies exist. MinFlux always tries the reaction carrying the least
flux next and stops at the first removal the oracle rejects, so it is fully
deterministic for a deterministic oracle. Random walks a seeded permutation
of the candidate reactions and skips every removal the oracle rejects, which
yields one sample of the locally minimal subnetworks.

Both strategies share Check, which turns an oracle answer into a yes/no
decision: an infeasible solve and a feasible solve with objective flux below
epsilon are the same thing to a pruner.
*/
package prune
