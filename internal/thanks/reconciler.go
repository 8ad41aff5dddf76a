package thanks

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/temirov/thanks/internal/githubrepo"
	"github.com/temirov/thanks/internal/graphql"
)

const (
	batcherNotConfiguredMessageConstant   = "star reconciler batcher not configured"
	phaseTransitionLogMessageConstant     = "reconciliation phase"
	mutationUnconfirmedLogMessageConstant = "star mutation not confirmed"
	logFieldPhaseConstant                 = "phase"
	logFieldTargetCountConstant           = "targets"
	logFieldBatchCountConstant            = "batched"
	logFieldNotStarredCountConstant       = "not_starred"
	logFieldDryRunConstant                = "dry_run"
)

// ReconciliationPhase names the states of one reconciliation run.
type ReconciliationPhase string

// Reconciliation phases in protocol order.
const (
	PhaseIdle            ReconciliationPhase = ReconciliationPhase("idle")
	PhaseLookupSent      ReconciliationPhase = ReconciliationPhase("lookup_sent")
	PhaseLookupResolved  ReconciliationPhase = ReconciliationPhase("lookup_resolved")
	PhaseMutationSkipped ReconciliationPhase = ReconciliationPhase("mutation_skipped")
	PhaseMutationSent    ReconciliationPhase = ReconciliationPhase("mutation_sent")
	PhaseDone            ReconciliationPhase = ReconciliationPhase("done")
)

// ErrBatcherNotConfigured indicates a reconciler was constructed without a batcher.
var ErrBatcherNotConfigured = errors.New(batcherNotConfiguredMessageConstant)

// StarBatcher performs the lookup and mutation round trips.
type StarBatcher interface {
	Lookup(executionContext context.Context, requests []graphql.LookupRequest) (graphql.LookupResult, error)
	Mutate(executionContext context.Context, requests []graphql.MutationRequest) (graphql.MutationResult, error)
}

// StarredRepository is one looked-up repository in target order.
type StarredRepository struct {
	LogicalKey   string
	URL          string
	NewlyStarred bool
}

// FailedRepository is one alias that failed lookup or mutation.
type FailedRepository struct {
	Alias      string
	LogicalKey string
	URL        string
	Message    string
}

// ReconciliationResult is the terminal output of one run.
// Starred lists already starred repositories and newly starred ones (would-star ones in dry run).
// PendingCount is the number of repositories the lookup found not yet starred.
type ReconciliationResult struct {
	Starred             []StarredRepository
	AlreadyStarredCount int
	PendingCount        int
	Failures            []FailedRepository
	Unconfirmed         []StarredRepository
	DryRun              bool
	Phase               ReconciliationPhase
}

// NewlyStarredCount counts repositories starred by this run, or that would be in dry run.
func (result ReconciliationResult) NewlyStarredCount() int {
	newlyStarredCount := 0
	for _, starredRepository := range result.Starred {
		if starredRepository.NewlyStarred {
			newlyStarredCount++
		}
	}
	return newlyStarredCount
}

// StarReconciler drives the lookup then mutate protocol.
type StarReconciler struct {
	logger         *zap.Logger
	batcher        StarBatcher
	requestTimeout time.Duration
}

// NewStarReconciler constructs a reconciler; a non-positive requestTimeout leaves deadlines to the caller context.
func NewStarReconciler(logger *zap.Logger, batcher StarBatcher, requestTimeout time.Duration) (*StarReconciler, error) {
	if batcher == nil {
		return nil, ErrBatcherNotConfigured
	}
	resolvedLogger := logger
	if resolvedLogger == nil {
		resolvedLogger = zap.NewNop()
	}
	return &StarReconciler{logger: resolvedLogger, batcher: batcher, requestTimeout: requestTimeout}, nil
}

type batchTarget struct {
	alias  string
	target TargetRepository
}

// Reconcile looks up every GitHub-shaped target, then stars the ones the viewer has not starred unless dryRun is set.
// A failed lookup round trip aborts the run; a failed mutation round trip reports its aliases as unconfirmed.
func (reconciler *StarReconciler) Reconcile(executionContext context.Context, targets TargetMap, dryRun bool) (ReconciliationResult, error) {
	result := ReconciliationResult{DryRun: dryRun, Phase: PhaseIdle}

	batchTargets, lookupRequests := buildLookupBatch(targets)

	reconciler.transition(&result, PhaseLookupSent, zap.Int(logFieldTargetCountConstant, len(targets)), zap.Int(logFieldBatchCountConstant, len(lookupRequests)))
	lookupResult, lookupError := reconciler.lookup(executionContext, lookupRequests)
	if lookupError != nil {
		return result, lookupError
	}

	failuresByAlias := make(map[string]string, len(lookupResult.Failures))
	for _, failure := range lookupResult.Failures {
		failuresByAlias[failure.Alias] = failure.Message
	}

	alreadyStarredAliases := make(map[string]struct{}, len(lookupResult.States))
	mutationRequests := make([]graphql.MutationRequest, 0, len(lookupResult.States))
	for _, state := range lookupResult.States {
		if state.AlreadyStarred {
			alreadyStarredAliases[state.Alias] = struct{}{}
			continue
		}
		mutationRequests = append(mutationRequests, graphql.MutationRequest{Alias: state.Alias, NodeID: state.NodeID})
	}
	result.AlreadyStarredCount = len(alreadyStarredAliases)
	result.PendingCount = len(mutationRequests)
	reconciler.transition(&result, PhaseLookupResolved, zap.Int(logFieldNotStarredCountConstant, len(mutationRequests)))

	pendingAliases := make(map[string]struct{}, len(mutationRequests))
	for _, mutationRequest := range mutationRequests {
		pendingAliases[mutationRequest.Alias] = struct{}{}
	}
	confirmedAliases := make(map[string]struct{}, len(mutationRequests))
	unconfirmedAliases := make(map[string]struct{})

	switch {
	case len(mutationRequests) == 0 || dryRun:
		reconciler.transition(&result, PhaseMutationSkipped, zap.Bool(logFieldDryRunConstant, dryRun))
		if dryRun {
			confirmedAliases = pendingAliases
		}
	default:
		reconciler.transition(&result, PhaseMutationSent)
		mutationResult, mutationError := reconciler.mutate(executionContext, mutationRequests)
		if mutationError != nil {
			reconciler.logger.Warn(mutationUnconfirmedLogMessageConstant, zap.Error(mutationError))
			unconfirmedAliases = pendingAliases
			break
		}
		for _, alias := range mutationResult.ConfirmedAliases {
			confirmedAliases[alias] = struct{}{}
		}
		for _, failure := range mutationResult.Failures {
			failuresByAlias[failure.Alias] = failure.Message
		}
	}

	for _, entry := range batchTargets {
		starredRepository := StarredRepository{LogicalKey: entry.target.LogicalKey, URL: entry.target.URL}
		if failureMessage, failed := failuresByAlias[entry.alias]; failed {
			result.Failures = append(result.Failures, FailedRepository{
				Alias:      entry.alias,
				LogicalKey: entry.target.LogicalKey,
				URL:        entry.target.URL,
				Message:    failureMessage,
			})
			continue
		}
		if _, alreadyStarred := alreadyStarredAliases[entry.alias]; alreadyStarred {
			result.Starred = append(result.Starred, starredRepository)
			continue
		}
		if _, confirmed := confirmedAliases[entry.alias]; confirmed {
			starredRepository.NewlyStarred = true
			result.Starred = append(result.Starred, starredRepository)
			continue
		}
		if _, unconfirmed := unconfirmedAliases[entry.alias]; unconfirmed {
			result.Unconfirmed = append(result.Unconfirmed, starredRepository)
		}
	}

	reconciler.transition(&result, PhaseDone)
	return result, nil
}

func (reconciler *StarReconciler) lookup(executionContext context.Context, requests []graphql.LookupRequest) (graphql.LookupResult, error) {
	requestContext, cancel := reconciler.requestContext(executionContext)
	defer cancel()
	return reconciler.batcher.Lookup(requestContext, requests)
}

func (reconciler *StarReconciler) mutate(executionContext context.Context, requests []graphql.MutationRequest) (graphql.MutationResult, error) {
	requestContext, cancel := reconciler.requestContext(executionContext)
	defer cancel()
	return reconciler.batcher.Mutate(requestContext, requests)
}

func (reconciler *StarReconciler) requestContext(executionContext context.Context) (context.Context, context.CancelFunc) {
	if reconciler.requestTimeout <= 0 {
		return context.WithCancel(executionContext)
	}
	return context.WithTimeout(executionContext, reconciler.requestTimeout)
}

func (reconciler *StarReconciler) transition(result *ReconciliationResult, phase ReconciliationPhase, fields ...zap.Field) {
	result.Phase = phase
	reconciler.logger.Debug(phaseTransitionLogMessageConstant, append([]zap.Field{zap.String(logFieldPhaseConstant, string(phase))}, fields...)...)
}

// buildLookupBatch aliases GitHub-shaped targets in target order; other targets never enter the batch.
func buildLookupBatch(targets TargetMap) ([]batchTarget, []graphql.LookupRequest) {
	batchTargets := make([]batchTarget, 0, len(targets))
	lookupRequests := make([]graphql.LookupRequest, 0, len(targets))
	for _, target := range targets {
		repositoryURL, shapeError := githubrepo.ParseRepositoryURL(target.URL)
		if shapeError != nil {
			continue
		}
		alias := graphql.AliasForIndex(len(lookupRequests))
		batchTargets = append(batchTargets, batchTarget{alias: alias, target: target})
		lookupRequests = append(lookupRequests, graphql.LookupRequest{
			Alias:      alias,
			Owner:      repositoryURL.Owner,
			Repository: repositoryURL.Repository,
		})
	}
	return batchTargets, lookupRequests
}
