// Package component models the analysed component tree and crawls it with
// depth-limited, ordered visitors.
//
// Two trees exist: the report tree (PROJECT, DIRECTORY, FILE) and the views
// tree (VIEW, SUBVIEW, PROJECT_VIEW). Every Type carries a rank inside its
// tree, and a visitor's DepthLimit names the deepest Type it cares about in
// each tree. The Crawler visits every node once and calls, in registration
// order, the visitors whose limit admits the node, either before its
// children (PreOrder) or after them (PostOrder).
package component
