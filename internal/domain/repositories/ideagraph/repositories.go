package ideagraph

import "agora/internal/domain/repositories"

// Repositories bundles one store's implementations of the graph repositories
// with the transaction manager they share.
type Repositories struct {
	Discussions DiscussionRepository
	Ideas       IdeaRepository
	Links       LinkRepository
	Syntheses   SynthesisRepository
	TextBundles TextBundleRepository
	Tx          repositories.TransactionManager
}
