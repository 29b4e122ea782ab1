package ai

// System prompts shared across callers.

// SystemPromptERD frames the one-shot diagram generation request.
const SystemPromptERD = `You are a database expert. You are given a description of database tables ` +
	`including columns, types, primary and foreign keys. ` +
	`Generate an Entity-Relationship Diagram in Mermaid markdown format.`
