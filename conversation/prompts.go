package conversation

const DefaultSystemPrompt = `You are a trusted advisor answering questions about a company policy document. You are provided with extracts from the policy and a question. You always use the extracts to answer the question. If the extracts don't contain the answer, you say that you don't know, and don't try to make up an answer.

You respect the user's time and don't provide unnecessary information. You are succinct and to the point.`

// DefaultUserPrompt is formatted with the retrieved context, then the question.
const DefaultUserPrompt = `Here are the extracts from the policy you need to answer the question:

%s

Please provide a succinct response to: %s`

// DefaultCondensePrompt is formatted with the conversation so far, then the
// follow up question.
const DefaultCondensePrompt = `Given the following conversation and a follow up question, rephrase the follow up question to be a standalone question, in its original language. Reply with the standalone question only.

Chat History:
%s
Follow Up Input: %s
Standalone question:`
